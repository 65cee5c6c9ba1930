package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/taskdeck-go/internal/infra/buildinfo"
	"github.com/yndnr/taskdeck-go/internal/storage"
)

// ErrLoginFailed is returned when the server rejects the credentials or
// cannot be reached.
var ErrLoginFailed = errors.New("login failed: check username, password and server")

// ErrPasswordRequired is returned when no password was given and stdin is
// not a terminal to prompt on.
var ErrPasswordRequired = errors.New("password required: use --password or TASKDECK_PASSWORD")

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   "Account password (prompted for when omitted)",
		EnvVars: []string{"TASKDECK_PASSWORD"},
	}
}

// password returns the --password value, prompting without echo when it
// is empty and stdin is a terminal.
func password(c *cli.Context) (string, error) {
	if pw := c.String("password"); pw != "" {
		return pw, nil
	}
	f, ok := c.App.Reader.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", ErrPasswordRequired
	}
	fmt.Fprint(c.App.ErrWriter, "Password: ")
	pw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", ErrPasswordRequired
	}
	return string(pw), nil
}

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "Account username",
				Required: true,
			},
			passwordFlag(),
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	pw, err := password(c)
	if err != nil {
		return err
	}
	sess, err := env.Session(c.Context)
	if err != nil {
		return err
	}

	if !sess.Login(c.Context, c.String("username"), pw) {
		return ErrLoginFailed
	}
	printMessage(env.Out, "Logged in as %s", c.String("username"))
	return nil
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account username", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
			passwordFlag(),
		},
		Action: register,
	}
}

func register(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	pw, err := password(c)
	if err != nil {
		return err
	}
	sess, err := env.Session(c.Context)
	if err != nil {
		return err
	}

	result := sess.Register(c.Context, c.String("username"), c.String("email"), pw)
	if !result.Success {
		return errors.New(result.Message)
	}
	printMessage(env.Out, "%s. Run `%s login` to sign in.", result.Message, buildinfo.Product)
	return nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored session tokens",
		Action: logout,
	}
}

func logout(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	sess, err := env.Session(c.Context)
	if err != nil {
		return err
	}
	if err := sess.Logout(); err != nil {
		return err
	}
	printMessage(env.Out, "Logged out")
	return nil
}

// statusView is the status command output.
type statusView struct {
	Server        string `json:"server" yaml:"server"`
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	CanRefresh    bool   `json:"can_refresh" yaml:"can_refresh"`
	Store         string `json:"store" yaml:"store"`
	StorePath     string `json:"store_path,omitempty" yaml:"store_path,omitempty" table:"wide"`
	Version       string `json:"version" yaml:"version"`
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the server and session state",
		Action: status,
	}
}

func status(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	sess, err := env.Session(c.Context)
	if err != nil {
		return err
	}

	view := statusView{
		Server:        env.Config.Server,
		Authenticated: sess.IsAuthenticated(),
		CanRefresh:    sess.HasRefreshToken(),
		Store:         env.Config.Store.Driver,
		Version:       buildinfo.Version,
	}
	if view.Store != storage.DriverMemory {
		view.StorePath = env.Config.Store.Path
		if view.StorePath == "" {
			view.StorePath = storage.DefaultPath(view.Store)
		}
		view.StorePath = filepath.Clean(view.StorePath)
	}
	return env.Print(view)
}
