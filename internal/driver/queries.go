package driver

var IndexQueries = []string{
	"CREATE INDEX entity_uuid IF NOT EXISTS FOR (n:Entity) ON (n.uuid)",
	"CREATE INDEX episodic_uuid IF NOT EXISTS FOR (n:Episodic) ON (n.uuid)",
	"CREATE INDEX entity_group_id IF NOT EXISTS FOR (n:Entity) ON (n.group_id)",
	"CREATE INDEX episodic_group_id IF NOT EXISTS FOR (n:Episodic) ON (n.group_id)",
	"CREATE INDEX relates_to_uuid IF NOT EXISTS FOR ()-[e:RELATES_TO]-() ON (e.uuid)",
	"CREATE INDEX relates_to_group_id IF NOT EXISTS FOR ()-[e:RELATES_TO]-() ON (e.group_id)",
}

const (
	SaveEpisodicNodeQuery = `
		MERGE (n:Episodic {uuid: $uuid})
		SET n.name = $name,
			n.group_id = $group_id,
			n.created_at = $created_at,
			n.valid_at = $valid_at,
			n.content = $content,
			n.source = $source,
			n.source_description = $source_description,
			n.entity_edges = $entity_edges
		RETURN n.uuid AS uuid
	`

	SaveEntityNodeQuery = `
		MERGE (n:Entity {uuid: $uuid})
		SET n.name = $name,
			n.group_id = $group_id,
			n.created_at = coalesce(n.created_at, $created_at),
			n.summary = $summary,
			n.name_embedding = $name_embedding
		RETURN n.uuid AS uuid
	`

	SaveEpisodicEdgeQuery = `
		MATCH (episode:Episodic {uuid: $source_uuid})
		MATCH (node:Entity {uuid: $target_uuid})
		MERGE (episode)-[e:MENTIONS {uuid: $uuid}]->(node)
		SET e.group_id = $group_id,
			e.created_at = $created_at
		RETURN e.uuid AS uuid
	`

	SaveEntityEdgeQuery = `
		MATCH (source:Entity {uuid: $source_uuid})
		MATCH (target:Entity {uuid: $target_uuid})
		MERGE (source)-[e:RELATES_TO {uuid: $uuid}]->(target)
		SET e.name = $name,
			e.fact = $fact,
			e.group_id = $group_id,
			e.created_at = $created_at,
			e.expired_at = $expired_at,
			e.valid_at = $valid_at,
			e.invalid_at = $invalid_at,
			e.episodes = $episodes,
			e.fact_embedding = $fact_embedding
		RETURN e.uuid AS uuid
	`

	GetGroupNodesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		RETURN n.uuid AS uuid, n.name AS name, n.summary AS summary
	`

	GetEpisodeByUUIDQuery = `
		MATCH (e:Episodic {uuid: $uuid})
		RETURN e.uuid AS uuid,
			e.name AS name,
			e.group_id AS group_id,
			e.created_at AS created_at,
			e.valid_at AS valid_at,
			e.content AS content,
			e.source AS source,
			e.source_description AS source_description,
			e.entity_edges AS entity_edges
	`

	DeleteEpisodeQuery = `
		MATCH (e:Episodic {uuid: $uuid})
		DETACH DELETE e
	`

	// SearchEdgesQuery returns the candidate pool for a search. An empty
	// $group_ids list means no group filter.
	SearchEdgesQuery = `
		MATCH (s:Entity)-[e:RELATES_TO]->(t:Entity)
		WHERE size($group_ids) = 0 OR e.group_id IN $group_ids
		RETURN e.uuid AS uuid,
			e.name AS name,
			e.fact AS fact,
			e.group_id AS group_id,
			e.created_at AS created_at,
			e.expired_at AS expired_at,
			e.valid_at AS valid_at,
			e.invalid_at AS invalid_at,
			e.episodes AS episodes,
			e.fact_embedding AS fact_embedding,
			s.uuid AS source_uuid,
			s.name AS source_name,
			t.uuid AS target_uuid,
			t.name AS target_name
		ORDER BY e.created_at DESC
		LIMIT $limit
	`

	EpisodeSourceDescriptionQuery = `
		MATCH (e:Episodic {uuid: $uuid})
		RETURN e.source_description AS source_description
	`
)
