package pipeline

import "fmt"

// SearchError reports a failed research stage.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("failed to search and analyze web content: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// ComposeError reports a failed post composition stage.
type ComposeError struct {
	Err error
}

func (e *ComposeError) Error() string {
	return fmt.Sprintf("failed to generate post content: %v", e.Err)
}

func (e *ComposeError) Unwrap() error { return e.Err }

// ImageGenerationError reports an image stage whose every fallback level
// failed to produce a usable URL.
type ImageGenerationError struct {
	Err error
}

func (e *ImageGenerationError) Error() string {
	return fmt.Sprintf("failed to generate post image: %v", e.Err)
}

func (e *ImageGenerationError) Unwrap() error { return e.Err }
