package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Field order is the wire
// order; append new fields at the end only.
var (
	IDMUS       mus.Serializer[ID]       = idMUS{}
	EntitiesMUS mus.Serializer[Entities] = entitiesMUS{}
	ArticleMUS  mus.Serializer[Article]  = articleMUS{}

	FeedCheckpointMUS mus.Serializer[FeedCheckpoint] = feedCheckpointMUS{}
)

var stringSliceMUS = ord.NewSliceSer[string](ord.String)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type entitiesMUS struct{}

func (entitiesMUS) Marshal(v Entities, bs []byte) (n int) {
	n = stringSliceMUS.Marshal(v.People, bs)
	n += stringSliceMUS.Marshal(v.Locations, bs[n:])
	return n + stringSliceMUS.Marshal(v.Organizations, bs[n:])
}

func (entitiesMUS) Unmarshal(bs []byte) (v Entities, n int, err error) {
	v.People, n, err = stringSliceMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Locations, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Organizations, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (entitiesMUS) Size(v Entities) (size int) {
	size = stringSliceMUS.Size(v.People)
	size += stringSliceMUS.Size(v.Locations)
	return size + stringSliceMUS.Size(v.Organizations)
}

func (entitiesMUS) Skip(bs []byte) (n int, err error) {
	for range 3 {
		var n1 int
		n1, err = stringSliceMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type articleMUS struct{}

func (articleMUS) Marshal(v Article, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Link, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.PublicationDate, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += stringSliceMUS.Marshal(v.Topics, bs[n:])
	n += EntitiesMUS.Marshal(v.Entities, bs[n:])
	return n + raw.TimeUnixMicroUTC.Marshal(v.CreatedAt, bs[n:])
}

func (articleMUS) Unmarshal(bs []byte) (v Article, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Link, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PublicationDate, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Topics, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Entities, n1, err = EntitiesMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (articleMUS) Size(v Article) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Link)
	size += raw.TimeUnixMicroUTC.Size(v.PublicationDate)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.Source)
	size += stringSliceMUS.Size(v.Topics)
	size += EntitiesMUS.Size(v.Entities)
	return size + raw.TimeUnixMicroUTC.Size(v.CreatedAt)
}

func (articleMUS) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		IDMUS.Skip,
		ord.String.Skip,
		ord.String.Skip,
		raw.TimeUnixMicroUTC.Skip,
		ord.String.Skip,
		ord.String.Skip,
		ord.String.Skip,
		stringSliceMUS.Skip,
		EntitiesMUS.Skip,
		raw.TimeUnixMicroUTC.Skip,
	}
	for _, skip := range skips {
		var n1 int
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type feedCheckpointMUS struct{}

func (feedCheckpointMUS) Marshal(v FeedCheckpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.FeedURL, bs)
	n += varint.Int.Marshal(v.Fetched, bs[n:])
	n += varint.Int.Marshal(v.Saved, bs[n:])
	return n + raw.TimeUnixMicroUTC.Marshal(v.UpdatedAt, bs[n:])
}

func (feedCheckpointMUS) Unmarshal(bs []byte) (v FeedCheckpoint, n int, err error) {
	v.FeedURL, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Fetched, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Saved, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (feedCheckpointMUS) Size(v FeedCheckpoint) (size int) {
	size = ord.String.Size(v.FeedURL)
	size += varint.Int.Size(v.Fetched)
	size += varint.Int.Size(v.Saved)
	return size + raw.TimeUnixMicroUTC.Size(v.UpdatedAt)
}

func (feedCheckpointMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for range 2 {
		n1, err = varint.Int.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = raw.TimeUnixMicroUTC.Skip(bs[n:])
	n += n1
	return
}
