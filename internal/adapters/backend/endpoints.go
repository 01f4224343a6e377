package backend

import (
	"github.com/target/grailed-admin/internal/domain/job"
)

type operation string

const (
	opStart  operation = "start"
	opStop   operation = "stop"
	opStatus operation = "status"
	opLogs   operation = "logs"
)

// endpoints lists the backend path, relative to the API base URL, for each job operation.
var endpoints = map[job.Kind]map[operation]string{
	job.KindScraping: {
		opStart:  "start_scraping",
		opStop:   "stop_scraping",
		opStatus: "get_scraping_status",
		opLogs:   "scraping_logs",
	},
	job.KindImageEmbedding: {
		opStart:  "embeddings/image/start",
		opStop:   "embeddings/image/stop",
		opStatus: "embeddings/image/status",
		opLogs:   "embeddings/image/logs",
	},
	job.KindTextEmbedding: {
		opStart:  "embeddings/text/start",
		opStop:   "embeddings/text/stop",
		opStatus: "embeddings/text/status",
		opLogs:   "embeddings/text/logs",
	},
}

// Scraping-only delete endpoints.
const (
	pathDeleteBySubstring = "delete_items_by_substring"
	pathDeleteByDesigners = "delete_items_by_designers"
	pathDeleteLowCount    = "delete_low_count_designers"
)
