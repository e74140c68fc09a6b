package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/client"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// login prompts for credentials and authenticates through the session
// controller. Failures are reported via the session state so the message
// matches what the server said.
func (a *App) login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, userName, password); err != nil {
		state := a.session.State()
		if state.Err != "" {
			fmt.Println("Login failed:", state.Err)
		}
		a.session.ClearError()
		return nil
	}

	fmt.Println("Login successful, welcome back!")
	return nil
}

// register prompts for the new account fields. A successful registration
// does not sign the user in; they log in explicitly afterwards.
func (a *App) register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	fmt.Print("Confirm ")
	password2, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	req := client.RegisterRequest{
		Username:  userName,
		Email:     email,
		Password:  password,
		Password2: password2,
	}
	if err := a.session.Register(ctx, req); err != nil {
		state := a.session.State()
		if state.Err != "" {
			fmt.Println("Registration failed:", state.Err)
		}
		a.session.ClearError()
		return nil
	}

	fmt.Println("Account created, you can now log in.")
	return nil
}

func (a *App) logout(ctx context.Context) {
	a.session.Logout(ctx)
	fmt.Println("Logged out.")
}

func (a *App) whoami() {
	state := a.session.State()
	if state.Status != session.StatusAuthenticated || state.User == nil {
		fmt.Println("Not signed in.")
		return
	}
	fmt.Printf("Signed in as %s", state.User.Username)
	if state.User.Email != "" {
		fmt.Printf(" <%s>", state.User.Email)
	}
	fmt.Println()
}
