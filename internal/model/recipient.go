// internal/model/recipient.go
package model

type Recipient struct {
	ID       int     `db:"id" json:"id"`
	Email    string  `db:"email" json:"email"`
	FullName string  `db:"full_name" json:"full_name"`
	Comment  *string `db:"comment" json:"comment,omitempty"`
	OwnerID  int     `db:"owner_id" json:"owner_id"`
}
