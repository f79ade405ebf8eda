// Command simulate drives the bot in-process through the memory gateway,
// for poking at generation and sessions without a chat platform.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"mimicbot/internal/app"
	"mimicbot/pkg/config"
	"mimicbot/pkg/gateway"
	"mimicbot/pkg/logger"
	"mimicbot/pkg/models"
)

const (
	simActor   = "operator"
	simChannel = "sim"
)

func main() {
	flags := config.ParseConfigFlags()
	fileCfg, fileExists, err := config.ParseConfigFile(flags)
	if err != nil {
		log.Fatalf("failed to load config file: %v", err)
	}
	envCfg, envRes := config.ParseConfigEnvs()
	eff, err := config.LoadEffectiveConfig(flags, fileCfg, fileExists, envCfg, envRes)
	if err != nil {
		log.Fatalf("failed to resolve config: %v", err)
	}

	logger.Init("error")

	a, err := app.New(eff, "sim", "none", "unknown")
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := a.Run(ctx); err != nil {
			log.Fatalf("runtime failure: %v", err)
		}
	}()

	gw := a.Gateway()
	fmt.Println("commands: say <author> <text>, del <event>, gen [author], global, regen <msg>, share <msg>, msgs, quit")

	seenMsgs, seenFails := 0, 0
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "say":
			if len(fields) < 3 {
				fmt.Println("usage: say <author> <text>")
				continue
			}
			id := uuid.NewString()
			gw.Push(gateway.Event{Created: &models.MessageCreated{
				EventID:  id,
				AuthorID: fields[1],
				Content:  strings.Join(fields[2:], " "),
			}})
			fmt.Printf("logged event %s\n", id)
		case "del":
			if len(fields) != 2 {
				fmt.Println("usage: del <event>")
				continue
			}
			gw.Push(gateway.Event{Deleted: &models.MessageDeleted{EventID: fields[1]}})
		case "gen":
			act := models.UserAction{Kind: models.ActionGenerate, ActorID: simActor, ChannelID: simChannel, Mode: models.ModeAuthor}
			if len(fields) > 1 {
				act.TargetAuthorID = fields[1]
			}
			gw.Push(gateway.Event{Action: &act})
		case "global":
			gw.Push(gateway.Event{Action: &models.UserAction{
				Kind: models.ActionGenerate, ActorID: simActor, ChannelID: simChannel, Mode: models.ModeGlobal,
			}})
		case "regen":
			if len(fields) != 2 {
				fmt.Println("usage: regen <msg>")
				continue
			}
			gw.Push(gateway.Event{Action: &models.UserAction{
				Kind: models.ActionRegenerate, ActorID: simActor, ChannelID: simChannel, MessageID: fields[1],
			}})
		case "share":
			if len(fields) != 2 {
				fmt.Println("usage: share <msg>")
				continue
			}
			gw.Push(gateway.Event{Action: &models.UserAction{
				Kind: models.ActionShare, ActorID: simActor, ChannelID: simChannel, MessageID: fields[1],
			}})
		case "msgs":
			for _, m := range gw.Messages() {
				fmt.Printf("[%s] %s\n", m.MessageID, m.Text)
			}
			continue
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
			continue
		}

		// handlers run on their own goroutines; give them a beat before
		// diffing the gateway
		time.Sleep(150 * time.Millisecond)
		msgs := gw.Messages()
		for _, m := range msgs[seenMsgs:] {
			fmt.Printf("emitted [%s] %s\n", m.MessageID, m.Text)
		}
		seenMsgs = len(msgs)
		fails := gw.Failures()
		for _, f := range fails[seenFails:] {
			fmt.Printf("failure to %s: %s\n", f.ActorID, f.Text)
		}
		seenFails = len(fails)
	}
}
