package ingest

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/kgerr"
	"github.com/geo-kg/indexer/model"
	"github.com/geo-kg/indexer/store"
)

// loadCursor reads the singleton cursor entity from the indexer's
// bookkeeping space. A missing cursor (first run) is reported as the zero
// cursor, not an error.
func loadCursor(ctx context.Context, s store.Store) (model.Cursor, error) {
	entity, found, err := s.FindEntity(ctx, model.CursorID)
	if err != nil {
		return model.Cursor{}, err
	}
	if !found {
		return model.Cursor{}, nil
	}

	overlay, ok := entity.Overlays[model.IndexerSpaceID]
	if !ok {
		return model.Cursor{}, nil
	}

	var cur model.Cursor
	if v, ok := overlay.Values[model.CursorAttribute]; ok {
		cur.CursorOpaque = v.Raw
	}
	if v, ok := overlay.Values[model.BlockNumberAttr]; ok {
		n, err := strconv.ParseUint(v.Raw, 10, 64)
		if err != nil {
			return model.Cursor{}, kgerr.SerializationErr(err, "cursor block number")
		}
		cur.BlockNumber = n
	}
	if v, ok := overlay.Values[model.VersionAttr]; ok {
		n, err := strconv.ParseUint(v.Raw, 10, 16)
		if err != nil {
			return model.Cursor{}, kgerr.SerializationErr(err, "cursor version index")
		}
		cur.VersionIndex = uint16(n)
	}
	if v, ok := overlay.Values[model.BlockTimestampAttr]; ok && v.Raw != "" {
		ts, err := time.Parse(time.RFC3339, v.Raw)
		if err != nil {
			return model.Cursor{}, kgerr.SerializationErr(err, "cursor block timestamp")
		}
		cur.BlockTimestamp = ts
	}
	return cur, nil
}

// storeCursor writes the cursor's new position, last-writer-wins, with the
// caller responsible for having already checked block-number monotonicity
// (Pipeline.ProcessBlock does this before invoking any handler).
func storeCursor(ctx context.Context, s store.Store, cur model.Cursor) error {
	return s.UpsertEntity(ctx, store.UpsertEntityInput{
		ID:      model.CursorID,
		SpaceID: model.IndexerSpaceID,
		Types:   []uuid.UUID{model.CursorType},
		Values: []model.Value{
			{PropertyID: model.CursorAttribute, Raw: cur.CursorOpaque},
			{PropertyID: model.BlockNumberAttr, Raw: strconv.FormatUint(cur.BlockNumber, 10)},
			{PropertyID: model.VersionAttr, Raw: strconv.FormatUint(uint64(cur.VersionIndex), 10)},
			{PropertyID: model.BlockTimestampAttr, Raw: cur.BlockTimestamp.UTC().Format(time.RFC3339)},
		},
	})
}
