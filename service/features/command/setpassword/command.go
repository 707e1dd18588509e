package setpassword

const (
	commandType = "SetPassword"
)

// Command represents the intent to set the password of a user by username.
type Command struct {
	Username string
	Password string
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command that sets the password of username.
func BuildCommand(username, password string) Command {
	return Command{Username: username, Password: password}
}
