package job

// Checkpoint is a structured progress report extracted from a log message.
// Exactly one of Scraping or Embedding is set, matching Kind.
type Checkpoint struct {
	Kind      Kind
	Scraping  *ScrapingCheckpoint
	Embedding *EmbeddingCheckpoint
}

// ScrapingCheckpoint is reported by the scraping job after each designer page.
type ScrapingCheckpoint struct {
	DesignerSlug      string
	LastScrollCount   int
	TotalItemsScraped int
	// Timestamp is kept as sent; the literal "None" means no scrape has completed yet.
	Timestamp string
}

// EmbeddingCheckpoint is reported by the image and text embedding jobs.
type EmbeddingCheckpoint struct {
	TotalItemsProcessed int
	Timestamp           string
}

// NoneLiteral is the placeholder value the backend sends for an unset timestamp.
const NoneLiteral = "None"
