// Copyright 2026 Veridia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidInput is the base error for all input validation failures.
	// Callers can match on it with errors.Is regardless of the specific cause.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuestion indicates the question text is empty or whitespace-only.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the answer text is empty or whitespace-only.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrEmptyQuery indicates a retrieval query is empty or whitespace-only.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyText indicates text passed to the embedder is empty or
	// whitespace-only. Such text is never embedded.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrUnsupportedLanguage indicates a language tag outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
