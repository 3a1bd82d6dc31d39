package plugin

// RemoteAdmin is the collaborator a plugin uses to run administrative
// commands against the real Minecraft server out of band from the
// proxied connection, the role mc4p's RconPlugin filled by holding its
// own Rcon instance. plugin/rcon.Client satisfies this interface; tests
// and plugins that don't need a real backend can supply a stub.
type RemoteAdmin interface {
	Execute(cmd string) (string, error)
}
