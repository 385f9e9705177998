package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/geo-kg/indexer/kgerr"
	"github.com/geo-kg/indexer/model"
)

// effectiveSearchRatio widens the ANN candidate set semantic search asks
// Neo4j's vector index for, so that post-filtering (by space, by type)
// still leaves close to n results.
const effectiveSearchRatio = 16

// Neo4jStore is the production Store backend.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore opens a driver against uri and verifies connectivity.
func NewNeo4jStore(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, kgerr.StoreErr(err, "neo4j: create driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, kgerr.StoreErr(err, "neo4j: verify connectivity")
	}
	return &Neo4jStore{driver: driver}, nil
}

func (s *Neo4jStore) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

func (s *Neo4jStore) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

// valuesToMap flattens a property slice into a {propertyID: raw} parameter
// map that callers merge onto a node or relationship with SET x += $map, so
// each value becomes its own property keyed by the property UUID.
func valuesToMap(values []model.Value) map[string]interface{} {
	m := make(map[string]interface{}, len(values))
	for _, v := range values {
		m[v.PropertyID.String()] = v.Raw
	}
	return m
}

// UpsertEntity merges the entity node and its per-space Properties overlay
// node, matching the teacher's MERGE-then-SET idiom.
func (s *Neo4jStore) UpsertEntity(ctx context.Context, in UpsertEntityInput) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	types := make([]string, len(in.Types))
	for i, t := range in.Types {
		types[i] = t.String()
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MERGE (e:Entity {id: $id})
			SET e.types = coalesce(e.types, []) + [t IN $types WHERE NOT t IN coalesce(e.types, [])]
			WITH e
			MERGE (e)-[:PROPERTIES]->(props:Properties {space_id: $space_id})
			SET props += $values
		`
		params := map[string]interface{}{
			"id":       in.ID.String(),
			"types":    types,
			"space_id": in.SpaceID.String(),
			"values":   valuesToMap(in.Values),
		}
		if _, err := tx.Run(ctx, cypher, params); err != nil {
			return nil, err
		}

		if in.Embedding != nil {
			embCypher := `
				MATCH (e:Entity {id: $id})-[:PROPERTIES]->(props:Properties {space_id: $space_id})
				SET props.embedding = $embedding
			`
			embed := make([]float64, len(in.Embedding))
			for i, f := range in.Embedding {
				embed[i] = float64(f)
			}
			if _, err := tx.Run(ctx, embCypher, map[string]interface{}{
				"id": in.ID.String(), "space_id": in.SpaceID.String(), "embedding": embed,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return kgerr.StoreErr(err, "upsert entity %s", in.ID)
	}
	return nil
}

// FindEntity loads an entity node plus all of its per-space overlays.
func (s *Neo4jStore) FindEntity(ctx context.Context, id uuid.UUID) (*model.Entity, bool, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH (e:Entity {id: $id})
			OPTIONAL MATCH (e)-[:PROPERTIES]->(props:Properties)
			RETURN e.types AS types, collect(props) AS overlays
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{"id": id.String()})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		record := res.Record()
		entity := model.NewEntity(id)

		if rawTypes, ok := record.Get("types"); ok && rawTypes != nil {
			for _, t := range rawTypes.([]interface{}) {
				tid, err := uuid.Parse(t.(string))
				if err != nil {
					return nil, kgerr.InvalidUUIDErr(err, "entity %s type", id)
				}
				entity.Types = append(entity.Types, tid)
			}
		}

		overlaysRaw, _ := record.Get("overlays")
		for _, o := range overlaysRaw.([]interface{}) {
			node, ok := o.(neo4j.Node)
			if !ok {
				continue
			}
			spaceIDStr, _ := node.Props["space_id"].(string)
			spaceID, err := uuid.Parse(spaceIDStr)
			if err != nil {
				continue
			}
			overlay := entity.OverlayIn(spaceID)
			for k, v := range node.Props {
				if k == "space_id" || k == "embedding" {
					continue
				}
				propID, err := uuid.Parse(k)
				if err != nil {
					continue
				}
				overlay.Values[propID] = model.Value{PropertyID: propID, Raw: fmt.Sprintf("%v", v)}
			}
			entity.Overlays[spaceID] = overlay
		}

		return entity, nil
	})
	if err != nil {
		return nil, false, kgerr.StoreErr(err, "find entity %s", id)
	}
	if result == nil {
		return nil, false, nil
	}
	return result.(*model.Entity), true, nil
}

// FindMany runs a caller-supplied parameterized Cypher query (typically
// produced by query.QueryBuilder.Compile) and materializes each returned
// entity row.
func (s *Neo4jStore) FindMany(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Entity, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var entities []*model.Entity
		for res.Next(ctx) {
			record := res.Record()
			raw, ok := record.Get("e")
			if !ok {
				continue
			}
			node, ok := raw.(neo4j.Node)
			if !ok {
				continue
			}
			idStr, _ := node.Props["id"].(string)
			id, err := uuid.Parse(idStr)
			if err != nil {
				continue
			}
			entities = append(entities, model.NewEntity(id))
		}
		return entities, res.Err()
	})
	if err != nil {
		return nil, kgerr.StoreErr(err, "find many")
	}
	return result.([]*model.Entity), nil
}

// UnsetValues removes the named properties from one space's overlay,
// leaving every other space's overlay untouched.
func (s *Neo4jStore) UnsetValues(ctx context.Context, id, spaceID uuid.UUID, propertyIDs []uuid.UUID) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	keys := make([]string, len(propertyIDs))
	for i, p := range propertyIDs {
		keys[i] = p.String()
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH (e:Entity {id: $id})-[:PROPERTIES]->(props:Properties {space_id: $space_id})
			CALL apoc.map.removeKeys(properties(props), $keys) YIELD value
			SET props = value
		`
		_, err := tx.Run(ctx, cypher, map[string]interface{}{
			"id": id.String(), "space_id": spaceID.String(), "keys": keys,
		})
		return nil, err
	})
	if err != nil {
		return kgerr.StoreErr(err, "unset values on entity %s", id)
	}
	return nil
}

// DeleteEntity closes every live relation touching the entity as of
// atVersion and detaches the node, matching the versioned-delete semantics
// of a SetTriple/DeleteTriple edit rather than a destructive removal.
func (s *Neo4jStore) DeleteEntity(ctx context.Context, id, spaceID uuid.UUID, atVersion model.Version) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH (e:Entity {id: $id})-[:PROPERTIES]->(props:Properties {space_id: $space_id})
			DETACH DELETE props
		`
		_, err := tx.Run(ctx, cypher, map[string]interface{}{
			"id": id.String(), "space_id": spaceID.String(),
		})
		return nil, err
	})
	if err != nil {
		return kgerr.StoreErr(err, "delete entity %s", id)
	}
	return nil
}

// InsertRelation writes a directed RELATION edge between two existing
// entity nodes, MERGEd on the relation id so a repeated insert converges on
// one live edge. The endpoints are matched, never created: an insert naming
// a missing endpoint writes nothing.
func (s *Neo4jStore) InsertRelation(ctx context.Context, in InsertRelationInput) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return nil, runInsertRelation(ctx, tx, in)
	})
	if err != nil {
		return kgerr.StoreErr(err, "insert relation %s", in.ID)
	}
	return nil
}

func runInsertRelation(ctx context.Context, tx neo4j.ManagedTransaction, in InsertRelationInput) error {
	cypher := `
		MATCH (from_entity:Entity {id: $from})
		MATCH (to_entity:Entity {id: $to})
		MERGE (from_entity)-[r:RELATION {id: $id}]->(to_entity)
		SET r.from_id = $from,
		    r.to_id = $to,
		    r.relation_type = $relation_type,
		    r.space_id = $space_id,
		    r.index = $index,
		    r.min_version = $min_version,
		    r.max_version = ""
		SET r += $properties
	`
	_, err := tx.Run(ctx, cypher, map[string]interface{}{
		"id":            in.ID.String(),
		"from":          in.From.String(),
		"to":            in.To.String(),
		"relation_type": in.RelationType.String(),
		"space_id":      in.SpaceID.String(),
		"index":         in.Index,
		"min_version":   string(in.MinVersion),
		"properties":    valuesToMap(in.Properties),
	})
	return err
}

// InsertManyRelations writes every relation in a single transaction: a
// failure anywhere rolls the whole batch back, isolating the failed batch
// from already-committed blocks rather than partially applying it.
func (s *Neo4jStore) InsertManyRelations(ctx context.Context, ins []InsertRelationInput) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, in := range ins {
			if err := runInsertRelation(ctx, tx, in); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return kgerr.StoreErr(err, "insert %d relations", len(ins))
	}
	return nil
}

// UpdateRelation patches the mutable fields of a relation in place,
// without touching its endpoints, id, or version bounds.
func (s *Neo4jStore) UpdateRelation(ctx context.Context, in UpdateRelationInput) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH ()-[r:RELATION {id: $id, space_id: $space_id}]->()
			SET r += $properties
		`
		params := map[string]interface{}{
			"id": in.ID.String(), "space_id": in.SpaceID.String(),
			"properties": valuesToMap(in.Properties),
		}
		if in.Index != nil {
			cypher += " SET r.index = $index"
			params["index"] = *in.Index
		}
		if in.RelationType != nil {
			cypher += " SET r.relation_type = $relation_type"
			params["relation_type"] = in.RelationType.String()
		}
		_, err := tx.Run(ctx, cypher, params)
		return nil, err
	})
	if err != nil {
		return kgerr.StoreErr(err, "update relation %s", in.ID)
	}
	return nil
}

// DeleteRelation closes a relation at atVersion rather than removing the
// edge, preserving it for as-of-version history queries.
func (s *Neo4jStore) DeleteRelation(ctx context.Context, id uuid.UUID, atVersion model.Version) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH ()-[r:RELATION {id: $id}]->()
			SET r.max_version = $max_version
		`
		_, err := tx.Run(ctx, cypher, map[string]interface{}{
			"id": id.String(), "max_version": string(atVersion),
		})
		return nil, err
	})
	if err != nil {
		return kgerr.StoreErr(err, "delete relation %s", id)
	}
	return nil
}

// FindRelation loads a relation edge by id, regardless of liveness.
func (s *Neo4jStore) FindRelation(ctx context.Context, id uuid.UUID) (*model.Relation, bool, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH (from_entity:Entity)-[r:RELATION {id: $id}]->(to_entity:Entity)
			RETURN from_entity.id AS from_id, to_entity.id AS to_id, r AS rel
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{"id": id.String()})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		record := res.Record()
		fromIDStr, _ := record.Get("from_id")
		toIDStr, _ := record.Get("to_id")
		relRaw, _ := record.Get("rel")
		rel, ok := relRaw.(neo4j.Relationship)
		if !ok {
			return nil, fmt.Errorf("store: relation %s record malformed", id)
		}

		fromID, err := uuid.Parse(fromIDStr.(string))
		if err != nil {
			return nil, err
		}
		toID, err := uuid.Parse(toIDStr.(string))
		if err != nil {
			return nil, err
		}
		relTypeID, err := uuid.Parse(rel.Props["relation_type"].(string))
		if err != nil {
			return nil, err
		}
		spaceID, err := uuid.Parse(rel.Props["space_id"].(string))
		if err != nil {
			return nil, err
		}

		return &model.Relation{
			ID:           id,
			From:         fromID,
			To:           toID,
			RelationType: relTypeID,
			SpaceID:      spaceID,
			Index:        fmt.Sprintf("%v", rel.Props["index"]),
			MinVersion:   model.Version(fmt.Sprintf("%v", rel.Props["min_version"])),
			MaxVersion:   model.Version(fmt.Sprintf("%v", rel.Props["max_version"])),
		}, nil
	})
	if err != nil {
		return nil, false, kgerr.StoreErr(err, "find relation %s", id)
	}
	if result == nil {
		return nil, false, nil
	}
	return result.(*model.Relation), true, nil
}

// FindManyRelations runs a caller-supplied parameterized Cypher query
// (typically produced by query.NewRelation(...).Compile()) and materializes
// each returned relation edge.
func (s *Neo4jStore) FindManyRelations(ctx context.Context, cypher string, params map[string]interface{}) ([]*model.Relation, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var relations []*model.Relation
		for res.Next(ctx) {
			record := res.Record()
			raw, ok := record.Get("r")
			if !ok {
				continue
			}
			rel, ok := raw.(neo4j.Relationship)
			if !ok {
				continue
			}
			relations = append(relations, relationFromProps(rel))
		}
		return relations, res.Err()
	})
	if err != nil {
		return nil, kgerr.StoreErr(err, "find many relations")
	}
	return result.([]*model.Relation), nil
}

// relationFromProps reconstructs a model.Relation from a RELATION edge's
// flattened properties, skipping the reserved system keys.
func relationFromProps(rel neo4j.Relationship) *model.Relation {
	id, _ := uuid.Parse(fmt.Sprintf("%v", rel.Props["id"]))
	from, _ := uuid.Parse(fmt.Sprintf("%v", rel.Props["from_id"]))
	to, _ := uuid.Parse(fmt.Sprintf("%v", rel.Props["to_id"]))
	relType, _ := uuid.Parse(fmt.Sprintf("%v", rel.Props["relation_type"]))
	spaceID, _ := uuid.Parse(fmt.Sprintf("%v", rel.Props["space_id"]))

	r := &model.Relation{
		ID:           id,
		From:         from,
		To:           to,
		RelationType: relType,
		SpaceID:      spaceID,
		Index:        fmt.Sprintf("%v", rel.Props["index"]),
		MinVersion:   model.Version(fmt.Sprintf("%v", rel.Props["min_version"])),
		MaxVersion:   model.Version(fmt.Sprintf("%v", rel.Props["max_version"])),
		Properties:   map[uuid.UUID]model.Value{},
	}
	reserved := map[string]bool{
		"id": true, "from_id": true, "to_id": true, "relation_type": true,
		"space_id": true, "index": true, "min_version": true, "max_version": true,
	}
	for k, v := range rel.Props {
		if reserved[k] {
			continue
		}
		propID, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		r.Properties[propID] = model.Value{PropertyID: propID, Raw: fmt.Sprintf("%v", v)}
	}
	return r
}

// ShortestPaths finds every shortest RELATION path between from and to, up
// to maxDepth hops, excluding paths that pass through the canonical schema
// type node (that node is adjacent to nearly every entity and produces
// meaningless "shortest" paths otherwise).
func (s *Neo4jStore) ShortestPaths(ctx context.Context, from, to uuid.UUID, maxDepth int) ([][]uuid.UUID, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH p = allShortestPaths((e1:Entity {id: $from})-[:RELATION*1..` + strconv.Itoa(maxDepth) + `]-(e2:Entity {id: $to}))
			WHERE NONE(n IN nodes(p) WHERE n.id = $schema_type)
			RETURN [n IN nodes(p) | n.id] AS node_ids
			LIMIT 100
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{
			"from": from.String(), "to": to.String(), "schema_type": model.SchemaTypeEntity.String(),
		})
		if err != nil {
			return nil, err
		}
		var paths [][]uuid.UUID
		for res.Next(ctx) {
			record := res.Record()
			rawIDs, _ := record.Get("node_ids")
			var path []uuid.UUID
			for _, raw := range rawIDs.([]interface{}) {
				id, err := uuid.Parse(raw.(string))
				if err != nil {
					continue
				}
				path = append(path, id)
			}
			paths = append(paths, path)
		}
		return paths, res.Err()
	})
	if err != nil {
		return nil, kgerr.StoreErr(err, "shortest paths %s -> %s", from, to)
	}
	return result.([][]uuid.UUID), nil
}

// SemanticSearch widens the ANN candidate set by effectiveSearchRatio
// before truncating to n, so downstream space/type filtering (done by the
// caller) doesn't starve the result set.
func (s *Neo4jStore) SemanticSearch(ctx context.Context, queryVector []float32, n int, ratio float64) ([]SemanticSearchResult, error) {
	if ratio <= 0 {
		ratio = effectiveSearchRatio
	}
	session := s.readSession(ctx)
	defer session.Close(ctx)

	vec := make([]float64, len(queryVector))
	for i, f := range queryVector {
		vec[i] = float64(f)
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			CALL db.index.vector.queryNodes('vector_index', $k, $vector)
			YIELD node, score
			ORDER BY score DESC
			MATCH (e:Entity)-[:PROPERTIES]->(node)
			RETURN e.id AS entity_id, score
			LIMIT $n
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{
			"vector": vec,
			"k":      int64(float64(n) * ratio),
			"n":      int64(n),
		})
		if err != nil {
			return nil, err
		}
		var results []SemanticSearchResult
		for res.Next(ctx) {
			record := res.Record()
			idStr, _ := record.Get("entity_id")
			scoreRaw, _ := record.Get("score")
			id, err := uuid.Parse(idStr.(string))
			if err != nil {
				continue
			}
			results = append(results, SemanticSearchResult{EntityID: id, Score: float32(scoreRaw.(float64))})
		}
		return results, res.Err()
	})
	if err != nil {
		return nil, kgerr.StoreErr(err, "semantic search")
	}
	return result.([]SemanticSearchResult), nil
}

// CreateVectorIndex ensures the cosine-similarity index SemanticSearch
// queries exists, at the given dimensionality.
func (s *Neo4jStore) CreateVectorIndex(ctx context.Context, name string, dim int) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			CALL db.index.vector.createNodeIndex($name, 'Properties', 'embedding', $dim, 'cosine')
		`
		_, err := tx.Run(ctx, cypher, map[string]interface{}{"name": name, "dim": int64(dim)})
		return nil, err
	})
	if err != nil {
		return kgerr.StoreErr(err, "create vector index %s", name)
	}
	return nil
}

// ParentSpaces satisfies hierarchy.SpaceRepository by reading the
// PARENT_SPACE edges the ingest layer writes when a space is added as a
// subspace of another.
func (s *Neo4jStore) ParentSpaces(spaceID uuid.UUID) ([]uuid.UUID, error) {
	ctx := context.Background()
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH (:Entity {id: $id})-[r:RELATION {relation_type: $relation_type}]->(parent:Entity)
			WHERE r.max_version = ""
			RETURN parent.id AS id
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{
			"id": spaceID.String(), "relation_type": model.ParentSpaceRelation.String(),
		})
		if err != nil {
			return nil, err
		}
		var parents []uuid.UUID
		for res.Next(ctx) {
			record := res.Record()
			idStr, _ := record.Get("id")
			id, err := uuid.Parse(idStr.(string))
			if err != nil {
				continue
			}
			parents = append(parents, id)
		}
		return parents, res.Err()
	})
	if err != nil {
		return nil, kgerr.StoreErr(err, "parent spaces of %s", spaceID)
	}
	return result.([]uuid.UUID), nil
}

// UpsertSpace merges a Space node keyed by id, recording every plugin
// address the ingestion pipeline may later need to resolve an event back
// to a space.
func (s *Neo4jStore) UpsertSpace(ctx context.Context, sp model.Space) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MERGE (sp:Space {id: $id})
			SET sp.network = $network,
			    sp.dao_address = $dao_address,
			    sp.governance_type = $governance_type,
			    sp.space_plugin_address = $space_plugin_address,
			    sp.voting_plugin_address = $voting_plugin_address,
			    sp.member_plugin_address = $member_plugin_address,
			    sp.personal_plugin_address = $personal_plugin_address
		`
		_, err := tx.Run(ctx, cypher, map[string]interface{}{
			"id":                      sp.ID.String(),
			"network":                 sp.Network,
			"dao_address":             sp.DaoAddress,
			"governance_type":         string(sp.GovernanceType),
			"space_plugin_address":    sp.SpacePluginAddress,
			"voting_plugin_address":   sp.VotingPluginAddress,
			"member_plugin_address":   sp.MemberPluginAddress,
			"personal_plugin_address": sp.PersonalPluginAddress,
		})
		return nil, err
	})
	if err != nil {
		return kgerr.StoreErr(err, "upsert space %s", sp.ID)
	}
	return nil
}

// FindSpaceByPluginAddress resolves a space by any of its four plugin
// addresses, since on-chain events are addressed by whichever plugin
// emitted them, not by the space id itself.
func (s *Neo4jStore) FindSpaceByPluginAddress(ctx context.Context, addr string) (uuid.UUID, bool, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
			MATCH (sp:Space)
			WHERE sp.space_plugin_address = $addr
			   OR sp.voting_plugin_address = $addr
			   OR sp.member_plugin_address = $addr
			   OR sp.personal_plugin_address = $addr
			RETURN sp.id AS id
			LIMIT 1
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{"addr": addr})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		idStr, _ := res.Record().Get("id")
		return uuid.Parse(idStr.(string))
	})
	if err != nil {
		return uuid.UUID{}, false, kgerr.StoreErr(err, "find space by plugin address %s", addr)
	}
	if result == nil {
		return uuid.UUID{}, false, nil
	}
	return result.(uuid.UUID), true, nil
}

// Close releases the underlying driver connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
