package discord

type User struct {
	ID       string
	Username string
	IsBot    bool
}

type Member struct {
	User  User
	Roles []string
}
