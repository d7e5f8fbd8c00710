package model

// Article is a single blog post persisted as article{id}.json.
// Field order matches the on-disk document: id, title, date, content.
type Article struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// DateLayout formats Article.Date as day/abbreviated-month/year, e.g. 07/Mar/2024.
const DateLayout = "02/Jan/2006"
