package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/geo-kg/indexer/model"
)

// Neo4jStore's methods talk to a live Cypher server and are exercised by
// integration tests against a running Neo4j instance elsewhere; here we
// cover only the pure helpers that shape query parameters.

func TestValuesToMap(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	values := []model.Value{
		{PropertyID: p1, Raw: "hello"},
		{PropertyID: p2, Raw: "42"},
	}

	m := valuesToMap(values)
	assert.Equal(t, "hello", m[p1.String()])
	assert.Equal(t, "42", m[p2.String()])
	assert.Len(t, m, 2)
}

func TestValuesToMap_Empty(t *testing.T) {
	m := valuesToMap(nil)
	assert.Empty(t, m)
}
