// internal/model/message.go
package model

type Message struct {
	ID         int    `db:"id" json:"id"`
	Subject    string `db:"subject" json:"subject"`
	LetterBody string `db:"letter_body" json:"letter_body"`
}
