package models

import "time"

// ProviderAPIRequest is an audit row recorded for every outbound call to a
// scraping provider, successful or not.
type ProviderAPIRequest struct {
	ID             uint64    `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	JobID          uint      `json:"job_id" gorm:"column:job_id;not null;index"`
	Provider       string    `json:"provider" gorm:"column:provider;type:varchar(32);not null"`
	HTTPMethod     string    `json:"http_method" gorm:"column:http_method;type:varchar(8);not null"`
	Endpoint       string    `json:"endpoint" gorm:"column:endpoint;type:text;not null"`
	ResponseStatus *int      `json:"response_status,omitempty" gorm:"column:response_status"`
	ResponseTimeMs *int      `json:"response_time_ms,omitempty" gorm:"column:response_time_ms"`
	ResponseBody   *string   `json:"response_body,omitempty" gorm:"column:response_body;type:text"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ProviderAPIRequest) TableName() string { return "provider_api_requests" }
