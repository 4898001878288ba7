package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"room-client/internal/handlers"
	"room-client/internal/moderation"
	"room-client/internal/selectors"
)

var ErrForbidden = errors.New("only moderators can do that")

type command struct {
	usage     string
	help      string
	moderator bool
	run       func(s *Session, ctx context.Context, args []string) (*moderation.Operation, error)
}

// commands is filled in init, its entries refer back to it.
var commands map[string]command

func init() {
	commands = map[string]command{
		"help": {
			usage: "/help",
			help:  "list commands",
			run: func(s *Session, _ context.Context, _ []string) (*moderation.Operation, error) {
				s.Chat.Log(helpText())
				return nil, nil
			},
		},
		"skip": {
			usage:     "/skip [reason]",
			help:      "skip the current DJ",
			moderator: true,
			run: func(s *Session, ctx context.Context, args []string) (*moderation.Operation, error) {
				return s.Moderation.SkipCurrentDJ(ctx, strings.Join(args, " "), false), nil
			},
		},
		"remove": {
			usage:     "/remove <user>",
			help:      "remove a user from the waitlist",
			moderator: true,
			run: func(s *Session, ctx context.Context, args []string) (*moderation.Operation, error) {
				if len(args) != 1 {
					return nil, usageError("remove")
				}
				u := selectors.UserByName(s.Store.State(), args[0])
				if u == nil {
					return nil, fmt.Errorf("unknown user %q", args[0])
				}
				return s.Moderation.RemoveWaitlistUser(ctx, *u), nil
			},
		},
		"move": {
			usage:     "/move <user> <position>",
			help:      "move a user to a waitlist position, counting from 1",
			moderator: true,
			run: func(s *Session, ctx context.Context, args []string) (*moderation.Operation, error) {
				if len(args) != 2 {
					return nil, usageError("move")
				}
				pos, err := strconv.Atoi(args[1])
				if err != nil || pos < 1 {
					return nil, usageError("move")
				}
				u := selectors.UserByName(s.Store.State(), args[0])
				if u == nil {
					return nil, fmt.Errorf("unknown user %q", args[0])
				}
				return s.Moderation.MoveWaitlistUser(ctx, *u, pos-1), nil
			},
		},
		"delete": {
			usage:     "/delete <message id>",
			help:      "delete one chat message",
			moderator: true,
			run: func(s *Session, ctx context.Context, args []string) (*moderation.Operation, error) {
				if len(args) != 1 {
					return nil, usageError("delete")
				}
				return s.Moderation.DeleteChatMessage(ctx, args[0]), nil
			},
		},
		"deleteuser": {
			usage:     "/deleteuser <user>",
			help:      "delete every chat message of a user",
			moderator: true,
			run: func(s *Session, ctx context.Context, args []string) (*moderation.Operation, error) {
				if len(args) != 1 {
					return nil, usageError("deleteuser")
				}
				u := selectors.UserByName(s.Store.State(), args[0])
				if u == nil {
					return nil, fmt.Errorf("unknown user %q", args[0])
				}
				return s.Moderation.DeleteChatMessagesByUser(ctx, u.ID), nil
			},
		},
		"clearchat": {
			usage:     "/clearchat",
			help:      "delete all chat messages",
			moderator: true,
			run: func(s *Session, ctx context.Context, _ []string) (*moderation.Operation, error) {
				return s.Moderation.DeleteAllChatMessages(ctx), nil
			},
		},
	}
}

func usageError(name string) error {
	return fmt.Errorf("%w: %s", handlers.ErrUsage, commands[name].usage)
}

func helpText() string {
	names := []string{"help", "skip", "remove", "move", "delete", "deleteuser", "clearchat"}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		c := commands[name]
		lines = append(lines, fmt.Sprintf("%s: %s", c.usage, c.help))
	}
	return strings.Join(lines, "\n")
}

// Execute runs one line of chat input. Lines starting with a slash are
// commands; anything else is sent as a chat message. Moderation requests
// run in the background and report failures in the feed.
func (s *Session) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return s.Chat.Send(line)
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty command", handlers.ErrUsage)
	}
	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("%w: unknown command /%s, try /help", handlers.ErrUsage, fields[0])
	}
	if cmd.moderator && !selectors.IsModerator(s.Store.State()) {
		return ErrForbidden
	}

	op, err := cmd.run(s, ctx, fields[1:])
	if err != nil || op == nil {
		return err
	}
	if err := op.Err(); errors.Is(err, moderation.ErrOperationPending) || errors.Is(err, moderation.ErrClosed) {
		return err
	}
	return nil
}
