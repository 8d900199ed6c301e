package models

import "time"

type Issue struct {
	IssueKey string `json:"issueKey"`
	Summary  string `json:"summary"`
}

type Attachment struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	CreatedUser User      `json:"createdUser"`
	Created     time.Time `json:"created"`
}

type User struct {
	ID          int64  `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	MailAddress string `json:"mailAddress"`
}

type IssueCount struct {
	Count int `json:"count"`
}
