// /internal/command/registry.go
package command

// RegisterCommand adds a command to the global registry, wrapped with the
// given middlewares. Called from init() in command packages.
func RegisterCommand(cmd Command, mws ...Middleware) {
	registry[cmd.Name()] = ApplyMiddlewares(cmd, mws...)
}

var registry = map[string]Command{}

func GetCommand(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

func AllCommands() []Command {
	list := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		list = append(list, cmd)
	}
	return list
}
