// Package sdk provides a Go client for the cinequery HTTP API.
//
//	client := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	parsed, _ := client.Parse(ctx, "top 5 action movies since 2000")
//	answer, _ := client.Answer(ctx, "top 5 action movies since 2000",
//	    sdk.WithLimit(5), sdk.WithTone("friendly"),
//	)
//	fmt.Println(answer.Answer)
package sdk
