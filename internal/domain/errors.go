package domain

import "errors"

var (
	// ErrInputShape signals that the canonicalizer received something
	// other than a mapping with intent/slots/results.
	ErrInputShape = errors.New("input must be a mapping with intent/slots/results")
	// ErrEmptyPayload signals a responder call without an executor payload.
	ErrEmptyPayload = errors.New("executor payload is required")
	// ErrRowSource signals a failure of the row-source collaborator.
	ErrRowSource = errors.New("row source failure")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrLLMProvider signals a failure of the language-model provider.
	ErrLLMProvider = errors.New("llm provider error")
)
