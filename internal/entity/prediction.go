package entity

import "time"

// PredictionRun is the audit row written after every successful prediction.
type PredictionRun struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Filename  string    `json:"filename"`
	RowCount  int       `json:"row_count"`
	CreatedAt time.Time `json:"created_at"`
}

// PredictionEvent is the payload published to the prediction topic.
type PredictionEvent struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	Filename  string `json:"filename"`
	RowCount  int    `json:"row_count"`
	Timestamp string `json:"timestamp"`
}

/*
Mysql Table

CREATE TABLE prediction_runs (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	filename VARCHAR(255) NOT NULL,
	row_count INT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
*/
