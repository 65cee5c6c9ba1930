package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/taskdeck-go/internal/client/api"
	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/infra/buildinfo"
)

// TaskCommand returns the task subcommand group.
func TaskCommand() *cli.Command {
	return &cli.Command{
		Name:    "task",
		Aliases: []string{"tasks"},
		Usage:   "Manage tasks",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tasks",
				Action:  taskList,
			},
			{
				Name:  "create",
				Usage: "Create a task",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Task title", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Task description"},
					&cli.BoolFlag{Name: "completed", Usage: "Mark the task completed"},
				},
				Action: taskCreate,
			},
			{
				Name:      "update",
				Usage:     "Update a task",
				ArgsUsage: "TASK_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
					&cli.BoolFlag{Name: "completed", Usage: "Completion state (--completed=false to reopen)"},
				},
				Action: taskUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a task",
				ArgsUsage: "TASK_ID",
				Action:    taskDelete,
			},
		},
	}
}

func taskList(c *cli.Context) error {
	env, client, err := taskClient(c)
	if err != nil {
		return err
	}

	tasks, err := client.GetTasks(c.Context)
	if err != nil {
		return err
	}
	return env.Print(tasks)
}

func taskCreate(c *cli.Context) error {
	env, client, err := taskClient(c)
	if err != nil {
		return err
	}

	t := domain.NewTask{Title: c.String("title")}
	if c.IsSet("description") {
		d := c.String("description")
		t.Description = &d
	}
	if c.IsSet("completed") {
		done := c.Bool("completed")
		t.Completed = &done
	}

	if err := t.Validate(); err != nil {
		return err
	}
	task, err := client.CreateTask(c.Context, t)
	if err != nil {
		return err
	}
	return env.Print(task)
}

func taskUpdate(c *cli.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	env, client, err := taskClient(c)
	if err != nil {
		return err
	}

	var p domain.TaskPatch
	if c.IsSet("title") {
		title := c.String("title")
		p.Title = &title
	}
	if c.IsSet("description") {
		d := c.String("description")
		p.Description = &d
	}
	if c.IsSet("completed") {
		done := c.Bool("completed")
		p.Completed = &done
	}

	if err := p.Validate(); err != nil {
		return err
	}
	task, err := client.UpdateTask(c.Context, id, p)
	if err != nil {
		return err
	}
	return env.Print(task)
}

func taskDelete(c *cli.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	env, client, err := taskClient(c)
	if err != nil {
		return err
	}

	if err := client.DeleteTask(c.Context, id); err != nil {
		return err
	}
	printMessage(env.Out, "Task %d deleted", id)
	return nil
}

// taskID parses the single TASK_ID argument.
func taskID(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, domain.ErrInvalidArgument.WithDetails("expected exactly one TASK_ID")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("invalid task id %q", c.Args().First()))
	}
	return id, nil
}

// taskClient returns the API client, refusing to dispatch when no token of
// either kind is stored.
func taskClient(c *cli.Context) (*Env, *api.Client, error) {
	env, err := envFrom(c)
	if err != nil {
		return nil, nil, err
	}
	sess, err := env.Session(c.Context)
	if err != nil {
		return nil, nil, err
	}
	if !sess.IsAuthenticated() && !sess.HasRefreshToken() {
		return nil, nil, domain.ErrNotAuthenticated.WithDetails(fmt.Sprintf("run `%s login` first", buildinfo.Product))
	}
	client, err := env.API(c.Context)
	if err != nil {
		return nil, nil, err
	}
	return env, client, nil
}
