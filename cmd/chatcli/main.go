package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/pkg/chatclient"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const help = `commands:
  /new                 start a new conversation
  /list                list your conversations
  /open <id>           continue a conversation
  /delete <id>         delete a conversation
  /image <path> [text] send a photo with an optional message
  /quit                exit`

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", "http://localhost:3000", "API base URL")
	token := flag.String("token", os.Getenv("CHATCLI_TOKEN"), "bearer token; empty chats as a guest")
	devUser := flag.String("dev-user", "", "sign a local token for this user id with JWT_SECRET")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-message timeout")
	flag.Parse()

	if *devUser != "" {
		signed, err := devToken(*devUser)
		if err != nil {
			color.Red("cannot sign dev token: %v", err)
			os.Exit(1)
		}
		*token = signed
	}

	client := chatclient.New(*baseURL,
		chatclient.WithToken(*token),
		chatclient.WithHTTPClient(&http.Client{}),
	)
	session := chatclient.NewSession(client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if session.IsGuest() {
		color.Yellow("Chatting as a guest (%d messages). Use -token to sign in.", chatclient.GuestQuota)
	}
	color.Cyan("FitCoach terminal. Type /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.GreenString("you> "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, session, line, *timeout); quit {
				return
			}
			continue
		}
		send(ctx, session, line, nil, *timeout)
	}
}

func devToken(userId string) (string, error) {
	id, err := uuid.Parse(userId)
	if err != nil {
		return "", err
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	return serverutils.SignToken(secret, dto.Caller{UserId: id, Role: "user"}, jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
}

func runCommand(ctx context.Context, s *chatclient.Session, line string, timeout time.Duration) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println(help)
	case "/new":
		if err := s.NewConversation(); err != nil {
			printError(err)
			return false
		}
		color.Cyan("new conversation")
	case "/list":
		list, err := s.Conversations(ctx)
		if err != nil {
			printError(err)
			return false
		}
		if len(list) == 0 {
			fmt.Println("no conversations yet")
		}
		for _, c := range list {
			preview := ""
			if c.LastMessage != nil {
				preview = *c.LastMessage
			}
			fmt.Printf("%s  %s  (%d)  %s\n", color.YellowString(c.ID), c.Title, c.MessageCount, color.HiBlackString(preview))
		}
	case "/open":
		if len(fields) < 2 {
			color.Red("usage: /open <id>")
			return false
		}
		if err := s.Open(ctx, fields[1]); err != nil {
			printError(err)
			return false
		}
		for _, e := range s.Transcript() {
			printEntry(e)
		}
	case "/delete":
		if len(fields) < 2 {
			color.Red("usage: /delete <id>")
			return false
		}
		if err := s.Delete(ctx, fields[1]); err != nil {
			printError(err)
			return false
		}
		color.Cyan("deleted")
	case "/image":
		if len(fields) < 2 {
			color.Red("usage: /image <path> [text]")
			return false
		}
		data, err := os.ReadFile(fields[1])
		if err != nil {
			color.Red("cannot read image: %v", err)
			return false
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, fields[0]+" "+fields[1]))
		send(ctx, s, text, &chatclient.Image{
			FileName: filepath.Base(fields[1]),
			MimeType: http.DetectContentType(data),
			Data:     data,
		}, timeout)
	default:
		color.Red("unknown command %s", fields[0])
	}
	return false
}

func send(ctx context.Context, s *chatclient.Session, text string, image *chatclient.Image, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.Send(ctx, text, image)
	if err != nil {
		printError(err)
		return
	}
	fmt.Printf("%s %s\n", color.CyanString("coach>"), res.Content)
	if s.IsGuest() {
		color.HiBlack("(%d guest messages left)", s.GuestMessagesLeft())
	}
}

func printEntry(e chatclient.Entry) {
	if e.Role == chatclient.RoleAssistant {
		fmt.Printf("%s %s\n", color.CyanString("coach>"), e.Content)
		return
	}
	fmt.Printf("%s %s\n", color.GreenString("you>"), e.Content)
}

func printError(err error) {
	var cerr *chatclient.Error
	if !errors.As(err, &cerr) {
		color.Red("error: %v", err)
		return
	}
	switch cerr.Kind {
	case chatclient.KindMessageLimitReached:
		color.Magenta("Daily limit reached. Upgrade your plan to keep chatting.")
	case chatclient.KindGuestQuotaExhausted:
		color.Magenta("Guest limit reached. Sign in to keep chatting.")
	default:
		color.Red("%s: %s", cerr.Kind, cerr.Message)
	}
}
