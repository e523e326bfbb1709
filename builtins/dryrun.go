package builtins

import (
	"github.com/charmbracelet/log"
)

// DryRun is a Game that only logs what it would do. The CLI uses it when
// no game process is attached.
type DryRun struct {
	Logger *log.Logger
}

func (d DryRun) Clone(source, name string) error {
	d.Logger.Info("clone", "source", source, "name", name)
	return nil
}

func (d DryRun) CloneBP(source, name string) error {
	d.Logger.Info("clone blueprint", "source", source, "name", name)
	return nil
}

func (d DryRun) KeepAlive(object string) error {
	d.Logger.Info("keep alive", "object", object)
	return nil
}

func (d DryRun) LoadPackage(pkg, object string) error {
	d.Logger.Info("load package", "package", pkg, "object", object)
	return nil
}

func (d DryRun) SuppressNextChat(message string) error {
	d.Logger.Info("suppress next chat", "message", message)
	return nil
}

func (d DryRun) SetEarly(object, attribute, value string) error {
	d.Logger.Info("set early", "object", object, "attribute", attribute, "value", value)
	return nil
}

func (d DryRun) RegenBalance() error {
	d.Logger.Info("regen balance")
	return nil
}
