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


package ai

import "errors"

var (
	// ErrTimeout indicates a remote embedding call exceeded its configured
	// bound. Recoverable: the caller may retry. It is deliberately distinct
	// from a not-found result so callers can tell "no answer found" apart
	// from "could not even attempt to find one".
	ErrTimeout = errors.New("embedding request timed out")

	// ErrEmptyEmbedding indicates the embedding service returned no vector
	// for a non-empty input.
	ErrEmptyEmbedding = errors.New("embedding service returned empty result")

	// ErrBatchSizeMismatch indicates the embedding service returned a
	// different number of vectors than texts submitted.
	ErrBatchSizeMismatch = errors.New("embedding batch size mismatch")
)
