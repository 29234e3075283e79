package model

// SearchEdge is one search hit. Endpoint refs and Score are nil when the
// backend did not supply them.
type SearchEdge struct {
	Edge       EntityEdge
	SourceNode *NodeRef
	TargetNode *NodeRef
	Score      *float64
}
