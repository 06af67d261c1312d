package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kmrtax/kmr-leads/internal/codec"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/engine"
	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/kmrtax/kmr-leads/internal/messages"
	"github.com/kmrtax/kmr-leads/internal/remote"
	"github.com/kmrtax/kmr-leads/internal/server"
)

var errUsage = errors.New(config.MsgUsage)

// backendInfo describes the selected remote backend.
type backendInfo interface {
	Available() bool
	Backend() string
}

// localState is the persisted collection behind the engine.
type localState interface {
	Reset()
}

// cli runs one command against a started engine.
type cli struct {
	engine  *engine.Engine
	store   localState
	backend backendInfo
	msg     *messages.Catalog
	out     io.Writer
	now     func() time.Time
	port    string
}

type command func(c *cli, ctx context.Context, args []string) error

var commands = map[string]command{
	config.CmdAdd:    (*cli).add,
	config.CmdRefer:  (*cli).refer,
	config.CmdList:   (*cli).list,
	config.CmdStats:  (*cli).stats,
	config.CmdDelete: (*cli).remove,
	config.CmdImport: (*cli).importFile,
	config.CmdExport: (*cli).export,
	config.CmdBackup: (*cli).backup,
	config.CmdSync:   (*cli).sync,
	config.CmdServe:  (*cli).serve,
	config.CmdReset:  (*cli).reset,
}

// run starts the engine, executes the command named by args[0] and waits for
// the background remote work it triggered.
func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%s %q: %w", config.ErrUnknownCommand, args[0], errUsage)
	}

	switch args[0] {
	case config.CmdReset:
		// Works on the persisted state only; loading would re-save it.
	case config.CmdSync:
		// sync reports the fetch itself instead of leaving it to the background.
		c.engine.Load()
	case config.CmdList, config.CmdStats, config.CmdExport:
		// Read commands print right away, so they wait for the remote merge.
		c.engine.Load()
		if c.backend.Available() {
			_, _ = c.engine.Refresh(ctx)
		}
	default:
		c.engine.Start(ctx)
	}
	defer c.engine.Drain(config.DrainTimeout)

	return cmd(c, ctx, args[1:])
}

func (c *cli) say(key string, data map[string]interface{}) {
	fmt.Fprintln(c.out, c.msg.Format(key, data))
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func (c *cli) add(_ context.Context, args []string) error {
	var (
		in               lead.Input
		service, contact string
	)
	fs := c.flags(config.CmdAdd)
	fs.StringVar(&in.Name, config.FlagName, "", config.FlagDescName)
	fs.StringVar(&in.Phone, config.FlagPhone, "", config.FlagDescPhone)
	fs.StringVar(&in.Email, config.FlagEmail, "", config.FlagDescEmail)
	fs.StringVar(&service, config.FlagService, "", config.FlagDescService)
	fs.StringVar(&in.Notes, config.FlagNotes, "", config.FlagDescNotes)
	fs.StringVar(&contact, config.FlagContact, "", config.FlagDescContact)
	fs.BoolVar(&in.Consent, config.FlagConsent, false, config.FlagDescConsent)
	fs.StringVar(&in.Source, config.FlagSource, "", config.FlagDescSource)
	fs.StringVar(&in.ReferralCode, config.FlagCode, "", config.FlagDescCode)
	fs.StringVar(&in.Referrer, config.FlagReferrer, "", config.FlagDescReferrer)
	fs.StringVar(&in.Language, config.FlagLang, "", config.FlagDescLang)
	if err := fs.Parse(args); err != nil {
		return err
	}

	in.Service = lead.Service(strings.ToLower(service))
	in.BestContact = lead.BestContact(strings.ToLower(contact))
	if in.Language == "" {
		in.Language = c.msg.Language()
	}

	l, err := lead.New(in, c.now())
	if err != nil {
		c.say(config.TKeyInvalidLead, map[string]interface{}{"Error": err})
		return err
	}
	c.engine.Add(l)
	c.say(config.TKeyLeadAdded, map[string]interface{}{"ID": l.ID})
	return nil
}

func (c *cli) refer(_ context.Context, args []string) error {
	var in lead.ReferralInput
	fs := c.flags(config.CmdRefer)
	fs.StringVar(&in.Referrer, config.FlagReferrer, "", config.FlagDescReferrer)
	fs.StringVar(&in.Name, config.FlagName, "", config.FlagDescName)
	fs.StringVar(&in.Email, config.FlagEmail, "", config.FlagDescEmail)
	fs.StringVar(&in.Language, config.FlagLang, "", config.FlagDescLang)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Language == "" {
		in.Language = c.msg.Language()
	}

	l, err := lead.NewReferral(in, c.now())
	if err != nil {
		c.say(config.TKeyInvalidLead, map[string]interface{}{"Error": err})
		return err
	}
	c.engine.Add(l)
	c.say(config.TKeyReferralSent, map[string]interface{}{"ID": l.ID})
	return nil
}

func (c *cli) list(_ context.Context, args []string) error {
	fs := c.flags(config.CmdList)
	query := fs.String(config.FlagQuery, "", config.FlagDescQuery)
	if err := fs.Parse(args); err != nil {
		return err
	}

	leads := lead.Filter(c.engine.Leads(), *query)
	if len(leads) == 0 {
		c.say(config.TKeyLeadsEmpty, nil)
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		config.ListColID,
		c.msg.Get(config.TKeyColCreated),
		c.msg.Get(config.TKeyColName),
		c.msg.Get(config.TKeyColService),
		c.msg.Get(config.TKeyColStatus))
	for _, l := range leads {
		created := config.ListUnknown
		if t, ok := l.Created(); ok {
			created = t.Local().Format(config.ListDateLayout)
		}
		status := l.StatusOrDefault()
		if status == config.DefaultStatus {
			status = c.msg.Get(config.TKeyStatusNew)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, created, l.Name, l.Service, status)
	}
	return tw.Flush()
}

func (c *cli) stats(_ context.Context, _ []string) error {
	s := lead.Summarize(c.engine.Leads())

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", c.msg.Get(config.TKeyStatTotal), s.Total)
	fmt.Fprintf(tw, "%s\t%d\n", c.msg.Get(config.TKeyStatTax), s.Tax)
	fmt.Fprintf(tw, "%s\t%d\n", c.msg.Get(config.TKeyStatReferrals), s.Referrals)
	return tw.Flush()
}

func (c *cli) remove(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s: %s <id>: %w", config.ErrMissingArgument, config.CmdDelete, errUsage)
	}
	data := map[string]interface{}{"ID": args[0]}
	if !c.engine.Delete(args[0]) {
		c.say(config.TKeyLeadNotFound, data)
		return nil
	}
	c.say(config.TKeyLeadDeleted, data)
	return nil
}

func (c *cli) importFile(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s: %s <file>: %w", config.ErrMissingArgument, config.CmdImport, errUsage)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrReadFile, err)
	}

	n, err := c.engine.Import(data)
	if err != nil {
		c.say(config.TKeyImportFailed, map[string]interface{}{"Error": err})
		return err
	}
	c.say(config.TKeyImported, map[string]interface{}{"Count": n})
	return nil
}

func (c *cli) export(_ context.Context, args []string) error {
	fs := c.flags(config.CmdExport)
	format := fs.String(config.FlagFormat, config.FormatCSV, config.FlagDescFormat)
	output := fs.String(config.FlagOutput, "", config.FlagDescOutput)
	query := fs.String(config.FlagQuery, "", config.FlagDescQuery)
	if err := fs.Parse(args); err != nil {
		return err
	}

	leads := lead.Filter(c.engine.Leads(), *query)
	data, name, err := codec.Export(strings.ToLower(*format), leads, c.now())
	if err != nil {
		return err
	}
	if *output != "" {
		name = *output
	}
	if err := os.WriteFile(name, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
	}

	c.say(config.TKeyExported, map[string]interface{}{"Count": len(leads), "File": name})
	return nil
}

func (c *cli) backup(ctx context.Context, _ []string) error {
	label, err := c.engine.BackupNow(ctx)
	switch {
	case errors.Is(err, remote.ErrUnavailable):
		c.say(config.TKeyBackupOff, nil)
		return nil
	case err != nil:
		c.say(config.TKeyBackupFailed, map[string]interface{}{"Error": err})
		return err
	}
	c.say(config.TKeyBackupSaved, map[string]interface{}{"Label": label})
	return nil
}

func (c *cli) sync(ctx context.Context, _ []string) error {
	if !c.backend.Available() {
		c.say(config.TKeyLocalOnly, nil)
		return nil
	}
	c.say(config.TKeyCloudActive, map[string]interface{}{"Backend": c.backend.Backend()})

	if _, err := c.engine.Refresh(ctx); err != nil {
		c.say(config.TKeySyncFailed, map[string]interface{}{"Error": err})
		return err
	}
	c.say(config.TKeySynced, map[string]interface{}{"Count": len(c.engine.Leads())})
	return nil
}

// reset erases the local collection and the backup schedule. Remote data is
// left alone.
func (c *cli) reset(_ context.Context, args []string) error {
	fs := c.flags(config.CmdReset)
	yes := fs.Bool(config.FlagYes, false, config.FlagDescYes)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("%s: %w", config.ErrResetConfirm, errUsage)
	}
	c.store.Reset()
	c.say(config.TKeyReset, nil)
	return nil
}

// serve publishes the feeds until ctx is cancelled. Every engine change
// re-renders them.
func (c *cli) serve(ctx context.Context, _ []string) error {
	srv := server.NewFeedServer(c.port)
	c.engine.Subscribe(srv.Update)

	if !c.backend.Available() {
		c.say(config.TKeyLocalOnly, nil)
	}
	addr := config.LocalhostBindAddr + config.AddrSeparator + c.port
	c.say(config.TKeyServing, map[string]interface{}{"Addr": addr})
	return srv.Start(ctx)
}
