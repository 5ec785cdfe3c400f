package models

import "time"

const (
	ProposerGovernment = "정부"
	ProposerMember     = "의원"
)

const (
	BillInProgress = "IN_PROGRESS"
	BillEnded      = "ENDED"
)

// Bill is one 입법예고 (legislative notice). BillNumber is the business key;
// re-crawling the same bill updates the stored record in place.
type Bill struct {
	BillNumber     string    `bson:"bill_number"`
	BillName       string    `bson:"bill_name"`
	ProposerType   string    `bson:"proposer_type"`
	Proposer       string    `bson:"proposer"`
	Committee      string    `bson:"committee"`
	ProposalReason string    `bson:"proposal_reason"`
	MainContent    string    `bson:"main_content"`
	NoticeStart    time.Time `bson:"notice_start"`
	NoticeEnd      time.Time `bson:"notice_end"`
	OpinionCount   int       `bson:"opinion_count"`
	SourceURL      string    `bson:"source_url"`
	Status         string    `bson:"status"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

type Petition struct {
	PetitionID   string    `bson:"petition_id"`
	Category     string    `bson:"category"`
	Title        string    `bson:"title"`
	Content      string    `bson:"content"`
	Hashtags     []string  `bson:"hashtags"`
	AgreeCount   int       `bson:"agree_count"`
	AgreeGoal    int       `bson:"agree_goal"`
	ProgressRate float64   `bson:"progress_rate"`
	StartDate    time.Time `bson:"start_date"`
	EndDate      time.Time `bson:"end_date"`
	SourceURL    string    `bson:"source_url"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// PetitionHistory is an append-only series of agree-count observations,
// one row per crawl that saw the count change.
type PetitionHistory struct {
	PetitionID string    `bson:"petition_id"`
	AgreeCount int       `bson:"agree_count"`
	RecordedAt time.Time `bson:"recorded_at"`
}

type CrawlStats struct {
	Fetched   int       `json:"fetched"`
	New       int       `json:"new"`
	Updated   int       `json:"updated"`
	Errors    int       `json:"errors"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
