package domain

type User struct {
	ID       int64
	Username string
	NickName string
	Email    string
	IsAdmin  bool
}
