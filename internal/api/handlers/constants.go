package handlers

const (
	// Batch analysis
	maxBatchItems = 50 // Larger batches must be split by the client

	// Review listing limits
	maxDueLimit     = 100
	maxUpcomingDays = 90
)
