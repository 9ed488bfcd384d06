// Command inspect dumps conversations, messages and registry rows from a
// denti-chat store as tables. Opens the database read-only so it can run
// next to a live server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"denti-chat/domain/chat"
	"denti-chat/repositories"
)

type config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	Colours        bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if !cfg.Colours {
		color.Disable()
	}

	what := flag.String("show", "conversations", "What to dump: conversations | messages | connections")
	conversationID := flag.String("conversation", "", "Conversation id (for -show messages)")
	flag.Parse()

	opts := badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch *what {
	case "conversations":
		err = dumpConversations(db)
	case "messages":
		if *conversationID == "" {
			log.Fatal("-conversation is required with -show messages")
		}
		err = dumpMessages(db, *conversationID)
	case "connections":
		err = dumpConnections(db)
	default:
		log.Fatalf("Unknown -show value %q", *what)
	}
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func dumpConversations(db *badger.DB) error {
	table := newTable([]string{"Conversation", "Clinic", "Professional", "Last message", "At", "Unread C/P"})
	count := 0

	err := scan(db, "conv:", func(key string, value []byte) error {
		var conversation chat.Conversation
		if err := json.Unmarshal(value, &conversation); err != nil {
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			return nil
		}
		table.Append([]string{
			conversation.ID,
			conversation.ClinicName,
			conversation.ProfessionalName,
			conversation.LastMessage,
			conversation.LastMessageAt.Format(time.RFC822),
			fmt.Sprintf("%d/%d", conversation.UnreadClinic, conversation.UnreadPro),
		})
		count++
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan.Printf("%d conversation(s)\n", count)
	table.Render()
	return nil
}

func dumpMessages(db *badger.DB, conversationID string) error {
	table := newTable([]string{"Message", "Sender", "Type", "Lang", "Content", "At"})
	count := 0

	err := scan(db, "msg:"+conversationID+":", func(key string, value []byte) error {
		var message chat.Message
		if err := json.Unmarshal(value, &message); err != nil {
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			return nil
		}
		sender := message.SenderName
		if message.Type == chat.MessageTypeSystem {
			sender = color.Yellow.Sprint(sender + " (system)")
		}
		table.Append([]string{
			message.ID,
			sender,
			string(message.Type),
			message.Lang,
			message.Content,
			message.CreatedAt.Format(time.RFC822),
		})
		count++
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan.Printf("%d message(s) in %s\n", count, conversationID)
	table.Render()
	return nil
}

func dumpConnections(db *badger.DB) error {
	table := newTable([]string{"Participant", "Connection", "Role", "Name", "Connected at"})
	count := 0

	err := scan(db, "conn:", func(key string, value []byte) error {
		var record repositories.ConnectionRecord
		if err := json.Unmarshal(value, &record); err != nil {
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			return nil
		}
		table.Append([]string{
			record.ParticipantKey.String(),
			record.ConnectionID,
			string(record.Role),
			record.DisplayName,
			record.ConnectedAt.Format(time.RFC822),
		})
		count++
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan.Printf("%d live connection(s)\n", count)
	table.Render()
	return nil
}

func scan(db *badger.DB, prefix string, visit func(key string, value []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				return visit(string(item.Key()), v)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
