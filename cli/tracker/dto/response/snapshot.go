package response

type SnapshotAll struct {
	Status    string `json:"status"`
	RunID     string `json:"run_id"`
	Evaluated int    `json:"evaluated"`
	Inserted  int    `json:"inserted"`
	Failed    int    `json:"failed"`
}
