// Command rbftool is the operator CLI for tinyRBF record files.
//
// Usage:
//
//	rbftool <command> [flags]
//
// Commands:
//
//	create   create a new record file
//	destroy  remove a record file
//	stat     print page count, counters and per-page usage
//	verify   check the structural invariants of a file
//	load     import a CSV file into a record file
//	dump     pretty-print every record in a file
//	bench    insert synthetic records into a scratch file and report
//	watch    periodically log file stats
//
// The load and dump commands read a YAML config describing the file and its
// record descriptor, e.g.:
//
//	file: users.rbf
//	descriptor:
//	  - {name: id, type: int}
//	  - {name: name, type: varchar, length: 50}
//	  - {name: score, type: real}
//	import:
//	  header: true
//	  nulls: ["NULL", "\\N"]
//	  encoding: latin1
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	tinyrbf "github.com/SimonWaldherr/tinyRBF"
	"github.com/SimonWaldherr/tinyRBF/internal/importer"
)

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = cmdCreate(os.Args[2:])
	case "destroy":
		err = cmdDestroy(os.Args[2:])
	case "stat":
		err = cmdStat(os.Args[2:])
	case "verify":
		err = cmdVerify(os.Args[2:])
	case "load":
		err = cmdLoad(os.Args[2:])
	case "dump":
		err = cmdDump(os.Args[2:])
	case "bench":
		err = cmdBench(os.Args[2:])
	case "watch":
		err = cmdWatch(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `rbftool - tinyRBF record file tool

usage: rbftool <command> [flags]

commands:
  create   -f <file>                      create a new record file
  destroy  -f <file>                      remove a record file
  stat     -f <file> [-pages]             print counters and usage
  verify   -f <file>                      check structural invariants
  load     -c <config.yaml> -csv <file>   import CSV rows
  dump     -c <config.yaml>               pretty-print all records
  bench    [-n <records>] [-keep]         synthetic insert benchmark
  watch    -f <file> [-every <dur>]       periodically log stats`)
}

// ───────────────────────────────────────────────────────────────────────────
// Config
// ───────────────────────────────────────────────────────────────────────────

type config struct {
	File       string     `yaml:"file"`
	Descriptor []attrSpec `yaml:"descriptor"`
	Import     importSpec `yaml:"import"`
}

type attrSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Length uint32 `yaml:"length"`
}

type importSpec struct {
	Comma    string   `yaml:"comma"`
	Header   bool     `yaml:"header"`
	Nulls    []string `yaml:"nulls"`
	Encoding string   `yaml:"encoding"`
}

func loadConfig(path string) (*config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.File == "" {
		return nil, fmt.Errorf("%s: missing 'file'", path)
	}
	if len(cfg.Descriptor) == 0 {
		return nil, fmt.Errorf("%s: missing 'descriptor'", path)
	}
	return &cfg, nil
}

func (c *config) descriptor() ([]tinyrbf.Attribute, error) {
	desc := make([]tinyrbf.Attribute, 0, len(c.Descriptor))
	for _, a := range c.Descriptor {
		attr := tinyrbf.Attribute{Name: a.Name, Length: a.Length}
		switch strings.ToLower(a.Type) {
		case "int":
			attr.Type, attr.Length = tinyrbf.TypeInt, 4
		case "real", "float":
			attr.Type, attr.Length = tinyrbf.TypeReal, 4
		case "varchar":
			attr.Type = tinyrbf.TypeVarChar
			if attr.Length == 0 {
				return nil, fmt.Errorf("attribute %q: varchar needs a length", a.Name)
			}
		default:
			return nil, fmt.Errorf("attribute %q: unknown type %q", a.Name, a.Type)
		}
		desc = append(desc, attr)
	}
	return desc, nil
}

// ───────────────────────────────────────────────────────────────────────────
// Commands
// ───────────────────────────────────────────────────────────────────────────

func cmdCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	file := fs.String("f", "", "record file")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("create: -f is required")
	}
	if err := tinyrbf.NewPagedFileManager().CreateFile(*file); err != nil {
		return err
	}
	log.WithField("file", *file).Info("created")
	return nil
}

func cmdDestroy(args []string) error {
	fs := flag.NewFlagSet("destroy", flag.ExitOnError)
	file := fs.String("f", "", "record file")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("destroy: -f is required")
	}
	if err := tinyrbf.NewPagedFileManager().DestroyFile(*file); err != nil {
		return err
	}
	log.WithField("file", *file).Info("destroyed")
	return nil
}

func cmdStat(args []string) error {
	fs := flag.NewFlagSet("stat", flag.ExitOnError)
	file := fs.String("f", "", "record file")
	pages := fs.Bool("pages", false, "include per-page stats")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("stat: -f is required")
	}
	info, err := tinyrbf.InspectFile(*file)
	if err != nil {
		return err
	}
	printStat(info, *pages)
	return nil
}

func printStat(info *tinyrbf.FileInfo, pages bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "file\t%s\n", info.Name)
	fmt.Fprintf(w, "user pages\t%d\n", info.UserPages)
	fmt.Fprintf(w, "reads\t%d\n", info.ReadCount)
	fmt.Fprintf(w, "writes\t%d\n", info.WriteCount)
	fmt.Fprintf(w, "appends\t%d\n", info.AppendCount)
	w.Flush()

	if pages && len(info.Pages) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "page\trecords\tused\tfree")
		for _, p := range info.Pages {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", p.Page, p.SlotCount, p.UsedSpace, p.FreeSpace)
		}
		w.Flush()
	}
}

func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	file := fs.String("f", "", "record file")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("verify: -f is required")
	}
	issues, err := tinyrbf.VerifyFile(*file)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		log.WithField("file", *file).Info("ok")
		return nil
	}
	for _, issue := range issues {
		log.Warn(issue)
	}
	return fmt.Errorf("verify: %d issue(s) found", len(issues))
}

func cmdLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	cfgPath := fs.String("c", "", "config file")
	csvPath := fs.String("csv", "", "CSV input file")
	fs.Parse(args)
	if *cfgPath == "" || *csvPath == "" {
		return fmt.Errorf("load: -c and -csv are required")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	desc, err := cfg.descriptor()
	if err != nil {
		return err
	}

	in, err := os.Open(*csvPath)
	if err != nil {
		return err
	}
	defer in.Close()

	pfm := tinyrbf.NewPagedFileManager()
	rbfm := tinyrbf.NewRecordFileManager(pfm)
	var h tinyrbf.FileHandle
	if err := rbfm.OpenFile(cfg.File, &h); err != nil {
		return err
	}
	defer rbfm.CloseFile(&h)

	comma := ','
	if cfg.Import.Comma != "" {
		comma = rune(cfg.Import.Comma[0])
	}
	res, err := importer.LoadCSV(in, rbfm, &h, desc, importer.Options{
		Comma:        comma,
		HasHeader:    cfg.Import.Header,
		NullLiterals: cfg.Import.Nulls,
		Encoding:     cfg.Import.Encoding,
		Log:          log,
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"rows": res.Rows, "file": cfg.File}).Info("loaded")
	return nil
}

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	cfgPath := fs.String("c", "", "config file")
	fs.Parse(args)
	if *cfgPath == "" {
		return fmt.Errorf("dump: -c is required")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	desc, err := cfg.descriptor()
	if err != nil {
		return err
	}

	pfm := tinyrbf.NewPagedFileManager()
	rbfm := tinyrbf.NewRecordFileManager(pfm)
	var h tinyrbf.FileHandle
	if err := rbfm.OpenFile(cfg.File, &h); err != nil {
		return err
	}
	defer rbfm.CloseFile(&h)

	return rbfm.DumpRecords(&h, desc, os.Stdout)
}

func cmdBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	n := fs.Int("n", 10000, "records to insert")
	keep := fs.Bool("keep", false, "keep the scratch file")
	fs.Parse(args)

	file := fmt.Sprintf("bench-%s.rbf", uuid.NewString())
	desc := []tinyrbf.Attribute{
		{Name: "id", Type: tinyrbf.TypeInt, Length: 4},
		{Name: "name", Type: tinyrbf.TypeVarChar, Length: 32},
		{Name: "score", Type: tinyrbf.TypeReal, Length: 4},
	}

	pfm := tinyrbf.NewPagedFileManager()
	rbfm := tinyrbf.NewRecordFileManager(pfm)
	if err := rbfm.CreateFile(file); err != nil {
		return err
	}
	if !*keep {
		defer rbfm.DestroyFile(file)
	}
	var h tinyrbf.FileHandle
	if err := rbfm.OpenFile(file, &h); err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < *n; i++ {
		if _, err := rbfm.InsertRecord(&h, desc, benchRecord(i)); err != nil {
			rbfm.CloseFile(&h)
			return err
		}
	}
	elapsed := time.Since(start)

	reads, writes, appends := h.CollectCounterValues()
	pages := h.NumberOfPages()
	if err := rbfm.CloseFile(&h); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"file":    file,
		"records": *n,
		"pages":   pages,
		"reads":   reads,
		"writes":  writes,
		"appends": appends,
		"elapsed": elapsed.Round(time.Millisecond),
		"per_sec": int(float64(*n) / elapsed.Seconds()),
	}).Info("bench finished")
	return nil
}

// benchRecord builds a synthetic record in the external encoding.
func benchRecord(i int) []byte {
	name := fmt.Sprintf("row-%08d", i)
	data := make([]byte, 1, 1+4+4+len(name)+4)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(int32(i)))
	data = append(data, b[:]...)
	binary.LittleEndian.PutUint32(b[:], uint32(len(name)))
	data = append(data, b[:]...)
	data = append(data, name...)
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(rand.Float32()*100))
	data = append(data, b[:]...)
	return data
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	file := fs.String("f", "", "record file")
	every := fs.Duration("every", 10*time.Second, "stat interval")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("watch: -f is required")
	}

	report := func() {
		info, err := tinyrbf.InspectFile(*file)
		if err != nil {
			log.WithError(err).Warn("inspect failed")
			return
		}
		log.WithFields(logrus.Fields{
			"pages":   info.UserPages,
			"reads":   info.ReadCount,
			"writes":  info.WriteCount,
			"appends": info.AppendCount,
		}).Info("stats")
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", *every), report); err != nil {
		return err
	}
	report()
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("stopping")
	return nil
}
