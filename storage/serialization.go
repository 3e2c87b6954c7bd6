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
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/veridia/answerit/core"
)

// SnapshotMeta is the header of a persisted index snapshot: everything
// needed to validate the snapshot before trusting its entries.
type SnapshotMeta struct {
	Dimension    int
	ModelVersion string
	Fingerprint  []byte
	Count        int
}

var (
	vectorSer      = ord.NewSliceSer[float32](raw.Float32)
	fingerprintSer = ord.NewSliceSer[byte](raw.Byte)
)

// indexEntrySer implements the MUS serializer for core.IndexEntry.
type indexEntrySer struct{}

// IndexEntryMUS serializes core.IndexEntry values in MUS format.
var IndexEntryMUS = indexEntrySer{}

func (indexEntrySer) Marshal(e core.IndexEntry, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(e.Id), bs)
	n += vectorSer.Marshal(e.Vector, bs[n:])
	return
}

func (indexEntrySer) Unmarshal(bs []byte) (e core.IndexEntry, n int, err error) {
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	e.Id = core.ID(id)
	var n1 int
	e.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (indexEntrySer) Size(e core.IndexEntry) (size int) {
	return varint.Uint64.Size(uint64(e.Id)) + vectorSer.Size(e.Vector)
}

func (indexEntrySer) Skip(bs []byte) (n int, err error) {
	n, err = varint.Uint64.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = vectorSer.Skip(bs[n:])
	n += n1
	return
}

// snapshotMetaSer implements the MUS serializer for SnapshotMeta.
type snapshotMetaSer struct{}

// SnapshotMetaMUS serializes SnapshotMeta values in MUS format.
var SnapshotMetaMUS = snapshotMetaSer{}

func (snapshotMetaSer) Marshal(m SnapshotMeta, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(m.Dimension, bs)
	n += ord.String.Marshal(m.ModelVersion, bs[n:])
	n += fingerprintSer.Marshal(m.Fingerprint, bs[n:])
	n += varint.PositiveInt.Marshal(m.Count, bs[n:])
	return
}

func (snapshotMetaSer) Unmarshal(bs []byte) (m SnapshotMeta, n int, err error) {
	m.Dimension, n, err = varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	m.ModelVersion, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Fingerprint, n1, err = fingerprintSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Count, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	return
}

func (snapshotMetaSer) Size(m SnapshotMeta) (size int) {
	size = varint.PositiveInt.Size(m.Dimension)
	size += ord.String.Size(m.ModelVersion)
	size += fingerprintSer.Size(m.Fingerprint)
	size += varint.PositiveInt.Size(m.Count)
	return
}

func (snapshotMetaSer) Skip(bs []byte) (n int, err error) {
	n, err = varint.PositiveInt.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = fingerprintSer.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	return
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry core.IndexEntry) []byte {
	buf := make([]byte, IndexEntryMUS.Size(entry))
	IndexEntryMUS.Marshal(entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (core.IndexEntry, error) {
	entry, _, err := IndexEntryMUS.Unmarshal(data)
	return entry, err
}

// MarshalSnapshotMeta serializes a SnapshotMeta to bytes.
func MarshalSnapshotMeta(meta SnapshotMeta) []byte {
	buf := make([]byte, SnapshotMetaMUS.Size(meta))
	SnapshotMetaMUS.Marshal(meta, buf)
	return buf
}

// UnmarshalSnapshotMeta deserializes a SnapshotMeta from bytes.
func UnmarshalSnapshotMeta(data []byte) (SnapshotMeta, error) {
	meta, _, err := SnapshotMetaMUS.Unmarshal(data)
	return meta, err
}
