package config

// DefaultExtractionPrompts returns the built-in prompts. Nodes is formatted with
// (source description, episode content); Edges with (entity list, episode content);
// Dedupe with (new entity list, existing entity list).
func DefaultExtractionPrompts() ExtractionPrompts {
	return ExtractionPrompts{
		Nodes: `You extract entities from a single episode of text.

<SOURCE DESCRIPTION>
%s
</SOURCE DESCRIPTION>

<EPISODE>
%s
</EPISODE>

Instructions:
List the significant entities (people, organizations, places, products, concepts) mentioned in the episode.
Use the most complete name that appears in the text. Do not list dates or pronouns.
Return a JSON object with key "extracted_entities", a list of objects with "name" and "entity_type_id" (use 0 when unsure).

Example JSON:
{"extracted_entities": [{"name": "Alice", "entity_type_id": 0}]}
`,
		Edges: `You extract facts that relate the given entities.

<ENTITIES>
%s
</ENTITIES>

<EPISODE>
%s
</EPISODE>

Instructions:
For each fact in the episode that connects two of the entities above, return the UUIDs of the source and target entities,
a relation type in SCREAMING_SNAKE_CASE, and the fact as a short sentence.
Return a JSON object with key "extracted_edges".

Example JSON:
{"extracted_edges": [{"source_node_uuid": "uuid-1", "target_node_uuid": "uuid-2", "relation_type": "WORKS_AT", "fact": "Alice works at Acme"}]}
`,
		Dedupe: `<NEW NODES>
%s
</NEW NODES>

<EXISTING NODES>
%s
</EXISTING NODES>

Instructions:
Identify which of the NEW NODES refer to the same real-world entity as one of the EXISTING NODES.
Only pair nodes you are confident about; nicknames and shortened names count, related entities do not.
Return a JSON object with key "duplicates", a list of objects with "original_uuid" (existing node UUID),
"duplicate_uuid" (new node UUID) and "confidence" (float between 0 and 1).

Example JSON:
{"duplicates": [{"original_uuid": "existing-1", "duplicate_uuid": "new-1", "confidence": 0.9}]}
`,
	}
}
