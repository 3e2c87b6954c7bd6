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


package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridia/answerit/core"
)

func TestIndexEntryRoundTrip(t *testing.T) {
	entry := core.IndexEntry{
		Id:     42,
		Vector: []float32{0.25, -0.5, 1.0, 0},
	}

	data := MarshalIndexEntry(entry)
	got, err := UnmarshalIndexEntry(data)
	require.NoError(t, err)

	assert.Equal(t, entry.Id, got.Id)
	assert.Equal(t, entry.Vector, got.Vector)
}

func TestIndexEntryRoundTrip_EmptyVector(t *testing.T) {
	entry := core.IndexEntry{Id: 1}

	got, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, core.ID(1), got.Id)
	assert.Empty(t, got.Vector)
}

func TestIndexEntryUnmarshal_Truncated(t *testing.T) {
	entry := core.IndexEntry{Id: 7, Vector: []float32{1, 2, 3}}
	data := MarshalIndexEntry(entry)

	_, err := UnmarshalIndexEntry(data[:len(data)-2])
	assert.Error(t, err)
}

func TestSnapshotMetaRoundTrip(t *testing.T) {
	meta := SnapshotMeta{
		Dimension:    384,
		ModelVersion: "embeddinggemma",
		Fingerprint:  core.SnapshotFingerprint("embeddinggemma", 384, []core.ID{1, 2, 3}),
		Count:        3,
	}

	got, err := UnmarshalSnapshotMeta(MarshalSnapshotMeta(meta))
	require.NoError(t, err)

	assert.Equal(t, meta.Dimension, got.Dimension)
	assert.Equal(t, meta.ModelVersion, got.ModelVersion)
	assert.Equal(t, meta.Fingerprint, got.Fingerprint)
	assert.Equal(t, meta.Count, got.Count)
}

func TestSnapshotMetaUnmarshal_Garbage(t *testing.T) {
	_, err := UnmarshalSnapshotMeta([]byte{0xff})
	assert.Error(t, err)
}
