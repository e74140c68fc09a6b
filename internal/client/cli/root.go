package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/session"
)

func (a *App) getStatus() string {
	state := a.session.State()
	switch state.Status {
	case session.StatusAuthenticated:
		if state.User != nil {
			return fmt.Sprintf("(%s)", state.User.Username)
		}
		return "(signed in)"
	case session.StatusError:
		return "(!)"
	default:
		return ""
	}
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to the ArecaNut analysis CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("areca %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: analyze <image>, history [page], show <id>, profile, setprofile, whoami, logout, exit")
			} else {
				fmt.Println("Available commands: login, register, exit")
			}
		case "login":
			err = a.login(ctx)
		case "register":
			err = a.register(ctx)
		case "logout":
			a.logout(ctx)
		case "whoami":
			a.whoami()
		case "profile":
			err = a.profile(ctx)
		case "setprofile":
			err = a.setProfile(ctx)
		case "analyze":
			err = a.analyze(ctx, args)
		case "history":
			err = a.history(ctx, args)
		case "show":
			err = a.show(ctx, args)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command (type 'help' for commands)")
		}

		if err != nil {
			fmt.Println("Error:", err.Error())
			if a.session.InvalidateIfUnauthorized(ctx, err) {
				fmt.Println("Your session has expired, please log in again.")
			}
		}
	}
}
