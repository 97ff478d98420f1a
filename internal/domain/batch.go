package domain

// BatchError tags a failed batch item with the employee it belongs to
type BatchError struct {
	Index      int        `json:"index"`
	EmployeeID EmployeeID `json:"employee_id"`
	Error      string     `json:"error"`
	Kind       string     `json:"kind"` // invalid_input, rate_not_found, configuration, timeout, internal
}

// BatchItem is a successful batch result tagged with its employee
type BatchItem struct {
	Index      int               `json:"index"`
	EmployeeID EmployeeID        `json:"employee_id"`
	Simulation *SimulationResult `json:"simulation"`
}

// BatchResult summarises a batch simulation run
type BatchResult struct {
	BatchID    string       `json:"batch_id"`
	Results    []BatchItem  `json:"results"`
	Errors     []BatchError `json:"errors"`
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
}
