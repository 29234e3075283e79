package model

type DuplicatePair struct {
	OriginalUUID  string  `json:"original_uuid"`
	DuplicateUUID string  `json:"duplicate_uuid"`
	Confidence    float64 `json:"confidence"`
}

type DeduplicationResult struct {
	Duplicates []DuplicatePair `json:"duplicates"`
}
