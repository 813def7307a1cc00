// Package repl is the ambient line-oriented front end over the table
// engine: meta-commands, statement preparation, and result rendering. None
// of its logic feeds back into the engine's own invariants — statements go
// through table.Execute, and the .btree and .constants commands only read
// layout constants and, through Table.Pager(), raw page contents.
package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"

	"rowstore/internal/btree"
	"rowstore/internal/page"
	"rowstore/internal/rowcodec"
	"rowstore/internal/table"
)

// REPL drives the read-prepare-execute-print loop over an open Table.
type REPL struct {
	tbl    *table.Table
	rl     *readline.Instance
	out    io.Writer
	closed bool
}

// New wires a REPL around an already-open Table, reading from a
// readline.Instance configured with prompt.
func New(tbl *table.Table, prompt string, out io.Writer) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	})
	if err != nil {
		return nil, err
	}
	return &REPL{tbl: tbl, rl: rl, out: out}, nil
}

// Close releases the readline instance. It does not close the underlying
// Table — callers own that lifetime separately.
func (r *REPL) Close() error {
	return r.rl.Close()
}

// Run reads lines until `.exit`, EOF, or a fatal I/O error, printing the
// spec's exact user-visible strings for every outcome.
func (r *REPL) Run() error {
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			result := r.doMetaCommand(line)
			if result == metaCommandExit {
				return nil
			}
			continue
		}

		if err := r.handleStatement(line); err != nil {
			return err
		}
	}
}

type metaCommandResult int

const (
	metaCommandSuccess metaCommandResult = iota
	metaCommandExit
	metaCommandUnrecognized
)

func (r *REPL) doMetaCommand(line string) metaCommandResult {
	switch line {
	case ".exit":
		return metaCommandExit
	case ".help":
		fmt.Fprintln(r.out, "Available commands:")
		fmt.Fprintln(r.out, "  insert <id> <username> <email>")
		fmt.Fprintln(r.out, "  select")
		fmt.Fprintln(r.out, "  .exit")
		fmt.Fprintln(r.out, "  .help")
		fmt.Fprintln(r.out, "  .btree")
		fmt.Fprintln(r.out, "  .constants")
		return metaCommandSuccess
	case ".constants":
		r.printConstants()
		return metaCommandSuccess
	case ".btree":
		r.printBTree()
		return metaCommandSuccess
	default:
		fmt.Fprintf(r.out, "Unrecognized command: '%s'.\n", line)
		return metaCommandUnrecognized
	}
}

type prepareResult int

const (
	prepareSuccess prepareResult = iota
	prepareSyntaxError
	prepareStringTooLong
	prepareNegativeID
	prepareUnrecognizedStatement
)

// handleStatement prepares and executes one statement line. Its error
// return is reserved for fatal engine errors (I/O failure, corrupt file);
// every user-level outcome is rendered as one of the spec's exact strings
// and never surfaces as a Go error.
func (r *REPL) handleStatement(line string) error {
	stmt, result := prepareStatement(line)
	switch result {
	case prepareStringTooLong:
		fmt.Fprintln(r.out, "String is too long.")
		return nil
	case prepareNegativeID:
		fmt.Fprintln(r.out, "ID must be positive.")
		return nil
	case prepareSyntaxError:
		fmt.Fprintln(r.out, "Syntax error. Could not parse statement.")
		return nil
	case prepareUnrecognizedStatement:
		fmt.Fprintf(r.out, "Unrecognized keyword at start of '%s'.\n", line)
		return nil
	}

	execResult, err := r.tbl.Execute(stmt, func(row rowcodec.Row) error {
		fmt.Fprintf(r.out, "(%d, %s, %s)\n", row.ID, row.Username, row.Email)
		return nil
	})
	if err != nil {
		return err
	}

	switch execResult {
	case table.ExecuteSuccess:
		fmt.Fprintln(r.out, "Executed.")
	case table.ExecuteDuplicateKey:
		fmt.Fprintln(r.out, "Error: Duplicate key.")
	case table.ExecuteTableFull:
		fmt.Fprintln(r.out, "Error: Table full.")
	}
	return nil
}

// prepareStatement parses and validates a raw input line into a
// table.Statement, applying the exact field-length and sign checks from
// spec.md §7. Parsing itself is deliberately a hand-rolled strings.Fields
// split, matching the teacher: statement parsing is out of the engine's
// algorithmic scope.
func prepareStatement(line string) (table.Statement, prepareResult) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return table.Statement{}, prepareUnrecognizedStatement
	}

	switch fields[0] {
	case "select":
		return table.Statement{Type: table.StatementSelect}, prepareSuccess
	case "insert":
		return prepareInsert(fields)
	default:
		return table.Statement{}, prepareUnrecognizedStatement
	}
}

func prepareInsert(fields []string) (table.Statement, prepareResult) {
	if len(fields) != 4 {
		return table.Statement{}, prepareSyntaxError
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return table.Statement{}, prepareSyntaxError
	}
	if id < 0 {
		return table.Statement{}, prepareNegativeID
	}

	username, email := fields[2], fields[3]
	if len(username) > rowcodec.MaxUsernameLen || len(email) > rowcodec.MaxEmailLen {
		return table.Statement{}, prepareStringTooLong
	}

	return table.Statement{
		Type: table.StatementInsert,
		RowToInsert: rowcodec.Row{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, prepareSuccess
}

func (r *REPL) printConstants() {
	fmt.Fprintln(r.out, "Constants:")
	fmt.Fprintf(r.out, "ROW_SIZE: %d\n", rowcodec.Size)
	fmt.Fprintf(r.out, "COMMON_NODE_HEADER_SIZE: %d\n", page.CommonHeaderSize)
	fmt.Fprintf(r.out, "LEAF_NODE_HEADER_SIZE: %d\n", page.LeafHeaderSize)
	fmt.Fprintf(r.out, "LEAF_NODE_CELL_SIZE: %d\n", page.LeafCellSize)
	fmt.Fprintf(r.out, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", page.Size-page.LeafHeaderSize)
	fmt.Fprintf(r.out, "LEAF_NODE_MAX_CELLS: %d\n", page.LeafMaxCells)
}

// printBTree renders the root page and, if it has split into an internal
// root with two leaf children, both children, as a table of (page, type,
// keys) rows.
func (r *REPL) printBTree() {
	pgr := r.tbl.Pager()
	root, err := pgr.GetPage(btree.RootPageNum)
	if err != nil {
		fmt.Fprintln(r.out, "Error: could not read root page.")
		return
	}

	tw := tablewriter.NewWriter(r.out)
	tw.SetHeader([]string{"page", "type", "keys"})

	if root.NodeType() == page.NodeTypeLeaf {
		tw.Append([]string{"0", "leaf", leafKeysString(root)})
		tw.Render()
		return
	}

	numKeys := root.InternalNumKeys()
	tw.Append([]string{"0", "internal", fmt.Sprintf("%d", root.InternalKey(0))})
	for i := uint32(0); i <= numKeys; i++ {
		childPageNum := root.InternalChild(i)
		child, err := pgr.GetPage(childPageNum)
		if err != nil {
			continue
		}
		tw.Append([]string{fmt.Sprintf("%d", childPageNum), "leaf", leafKeysString(child)})
	}
	tw.Render()
}

func leafKeysString(n *page.Page) string {
	numCells := n.LeafNumCells()
	keys := make([]string, numCells)
	for i := uint32(0); i < numCells; i++ {
		keys[i] = fmt.Sprintf("%d", n.LeafKey(i))
	}
	return strings.Join(keys, ",")
}
