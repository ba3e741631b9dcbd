// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package boot assembles the boot sequence of the realm init from its
// configuration.
package boot

import (
	"log/slog"
	"maps"
	"os"
	"os/exec"

	"github.com/aibor/realminit/internal/bootparam"
	"github.com/aibor/realminit/internal/config"
	"github.com/aibor/realminit/internal/udhcpc"
	"github.com/aibor/realminit/sysinit"
)

// Kernel command line parameters.
const (
	ParamConsole  = "console"
	ParamLogLevel = "realm.loglevel"
)

// Boot carries the values resolved during the boot from one step to the
// next.
type Boot struct {
	Config config.Config

	// CmdlineFile is read for the kernel command line.
	CmdlineFile string

	// LogLevel is adjusted if the kernel command line overrides the log
	// level. May be nil.
	LogLevel *slog.LevelVar

	params   bootparam.Params
	console  string
	logLevel string
}

// New creates a new [Boot] for the given config.
func New(cfg config.Config, logLevel *slog.LevelVar) *Boot {
	return &Boot{
		Config:      cfg,
		CmdlineFile: bootparam.CmdlineFile,
		LogLevel:    logLevel,
		logLevel:    cfg.LogLevel,
	}
}

// Funcs returns the boot sequence to pass to [sysinit.Run].
//
// Installing the toolbox and mounting the essential file systems are fatal
// on failure. The DHCP client is stopped on cleanup. Everything after is best effort, up to the handoff to the
// execution target.
func (b *Boot) Funcs() []sysinit.Func {
	return []sysinit.Func{
		sysinit.WithToolbox(b.Config.Toolbox.Path, b.Config.Toolbox.Dir),
		sysinit.WithMountPoints(sysinit.EssentialMountPoints()),
		sysinit.WithMountPoints(sysinit.OptionalMountPoints()),
		sysinit.WithSymlinks(sysinit.DevSymlinks()),
		b.ReadCmdline,
		b.ExportEnv,
		sysinit.WithPhase(sysinit.PhaseNetworkStarting),
		sysinit.WithInterfaceUp(b.Config.Interface),
		sysinit.WithBackground("dhcp client", b.DHCPClientCommand),
		sysinit.WithPhase(sysinit.PhaseTargetRunning),
		b.Handoff,
	}
}

// ReadCmdline reads the kernel command line and resolves the console device
// and the log level from it. An unreadable command line is treated like an
// empty one.
func (b *Boot) ReadCmdline(_ *sysinit.State) error {
	params, err := bootparam.ReadFile(b.CmdlineFile)
	if err != nil {
		slog.Warn("Using empty kernel command line", slog.Any("error", err))
	}

	b.params = params

	consoleParam, _ := params.Value(ParamConsole)
	b.console = sysinit.ResolveConsole(consoleParam, b.Config.Console.Fallback)

	if name, ok := params.Value(ParamLogLevel); ok {
		b.setLogLevel(name)
	}

	slog.Debug("Kernel command line",
		slog.Any("params", []string(params)),
		slog.String("console", b.console),
	)

	return nil
}

func (b *Boot) setLogLevel(name string) {
	level, err := config.ParseLogLevel(name)
	if err != nil {
		slog.Warn("Ignoring log level parameter", slog.Any("error", err))
		return
	}

	b.logLevel = name

	if b.LogLevel != nil {
		b.LogLevel.Set(level)
	}
}

// EnvVars returns the variables exported to all children: the console
// device, the log level and the extra variables from the config.
func (b *Boot) EnvVars() sysinit.EnvVars {
	envVars := sysinit.EnvVars{}

	maps.Copy(envVars, b.Config.Env)

	envVars[b.Config.Console.Var] = b.console
	envVars[b.Config.LogLevelVar] = b.logLevel

	return envVars
}

// ExportEnv sets [Boot.EnvVars] in the environment of the init, so all
// children inherit them.
func (b *Boot) ExportEnv(_ *sysinit.State) error {
	return sysinit.SetEnv(b.EnvVars())
}

// HandlerSettings returns the settings passed to the DHCP lifecycle hook.
func (b *Boot) HandlerSettings() udhcpc.Settings {
	return udhcpc.Settings{
		LockFile:   b.Config.DHCP.LockFile,
		ResolvConf: b.Config.DHCP.ResolvConf,
		LogLevel:   b.logLevel,
	}
}

// DHCPClientCommand returns the command for the DHCP client. It stays in
// the foreground of its own session, bound to the configured interface, and
// calls the configured hook on every transition. The hook settings are
// passed in its environment.
func (b *Boot) DHCPClientCommand() *exec.Cmd {
	args := []string{
		"-f",
		"-i", b.Config.Interface,
		"-s", b.Config.DHCP.Handler,
	}
	args = append(args, b.Config.DHCP.Args...)

	cmd := exec.Command(b.Config.DHCP.Client, args...)
	cmd.Env = append(os.Environ(), b.HandlerSettings().Environ()...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	return cmd
}

// Target returns the execution target selected on the kernel command line.
func (b *Boot) Target() sysinit.Target {
	return sysinit.Target{
		Path: bootparam.ResolveTarget(
			b.params,
			b.Config.Targets,
			b.Config.DefaultTarget,
		),
	}
}

// Handoff runs the execution target on the console and records its exit
// code.
func (b *Boot) Handoff(state *sysinit.State) error {
	target := b.Target()

	slog.Info("Execution target resolved", slog.String("path", target.Path))

	return sysinit.RunTarget(state, target, b.console)
}
