package service

const (
	// Weeks shown in the dashboard compliance trend
	ChartWeeks = 12

	// Pagination limits
	RecentWorkoutsLimit = 10

	// Sync batching
	StreamSyncBatch = 50
	ActivityPerPage = 100
)
