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

import (
	"fmt"
	"strings"
)

// ValidateQAPair validates a pair received at the training boundary.
//
// Validation rules:
//   - Question must not be empty or whitespace-only
//   - Answer must not be empty or whitespace-only
//   - Language must be one of the supported tags
//
// NOT validated:
//   - Category (free-form classification tag, never used by matching)
func ValidateQAPair(pair *QAPair) error {
	if pair == nil {
		return fmt.Errorf("%w: pair is nil", ErrInvalidInput)
	}

	if strings.TrimSpace(pair.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyQuestion)
	}

	if strings.TrimSpace(pair.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyAnswer)
	}

	if !IsSupportedLanguage(pair.Language) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrUnsupportedLanguage, pair.Language)
	}

	return nil
}

// ValidateQuery validates free-form query text at the retrieval boundary.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyQuery)
	}
	return nil
}

// ValidateEmbeddingText validates text before it is sent to the embedder.
// Empty or whitespace-only text is rejected, never embedded.
func ValidateEmbeddingText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyText)
	}
	return nil
}
