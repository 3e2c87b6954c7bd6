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


// Package training ingests question-answer pairs into the knowledge base.
// It validates each pair, generates question embeddings in concurrent
// batches, persists accepted records and registers them in the vector
// index. Failures are reported per pair so a bad entry never sinks the
// rest of its batch.
package training
