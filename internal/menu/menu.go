// Package menu implements the line-oriented interactive console.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/talgya/ecosim/internal/ecosystem"
	"github.com/talgya/ecosim/internal/engine"
)

const (
	msgWelcome          = "Welcome to the ecosystem simulator"
	msgChoose           = "Choose an operation: "
	msgIncorrect        = "Incorrect selection"
	msgIncorrectName    = "Incorrect name: use letters only"
	msgIncorrectDiet    = "Incorrect diet type: use herbivore, carnivore or omnivore"
	msgIncorrectNumber  = "Incorrect number, try again"
	msgFailedToOpen     = "Failed to load or create ecosystem"
	msgEcosystemExists  = "This ecosystem already exists"
	msgEcosystemCreated = "Ecosystem created"
	msgEcosystemLoaded  = "Ecosystem loaded"
	msgGoodbye          = "Exiting the program"
)

type styles struct {
	heading lipgloss.Style
	err     lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E8B57")),
		err:     r.NewStyle().Foreground(lipgloss.Color("#D7263D")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#6A994E")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#8D99AE")),
	}
}

// Session is one interactive console session.
type Session struct {
	sim   *engine.Simulation
	in    *bufio.Scanner
	out   io.Writer
	style styles
}

// NewSession creates a session reading commands from in and writing to out.
// Styling adapts to out: plain text when it is not a terminal.
func NewSession(sim *engine.Simulation, in io.Reader, out io.Writer) *Session {
	return &Session{
		sim:   sim,
		in:    bufio.NewScanner(in),
		out:   out,
		style: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Run shows the main menu until the user exits or input ends. End of input
// is a normal exit.
func (s *Session) Run() error {
	s.println(s.style.heading.Render(msgWelcome))

	for {
		err := s.mainMenu()
		if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

var errExit = errors.New("exit")

func (s *Session) mainMenu() error {
	s.println(s.style.heading.Render("Menu:"))
	s.println("1. Create a new ecosystem")
	s.println("2. Load an existing ecosystem")
	s.println("3. Exit")

	choice, err := s.readChoice()
	if err != nil {
		return err
	}

	var name string
	switch choice {
	case 1:
		name, err = s.createEcosystem()
	case 2:
		name, err = s.loadEcosystem()
	case 3:
		s.println(msgGoodbye)
		return errExit
	default:
		s.println(msgIncorrect)
		return nil
	}
	if err != nil {
		return err
	}
	if name == "" {
		s.println(msgFailedToOpen)
		return nil
	}
	return s.manage(name)
}

func (s *Session) createEcosystem() (string, error) {
	name, err := s.prompt("Enter the name of the new ecosystem: ")
	if err != nil {
		return "", err
	}
	if err := ecosystem.ValidateEcosystemName(name); err != nil {
		s.fail(err)
		return "", nil
	}
	switch _, err := s.sim.LoadEcosystem(name); {
	case err == nil:
		s.println(msgEcosystemExists)
		return "", nil
	case !errors.Is(err, ecosystem.ErrEcosystemNotFound):
		s.fail(err)
		return "", nil
	}

	c, err := s.readConditions()
	if err != nil {
		return "", err
	}
	if err := s.sim.CreateEcosystem(name, c); err != nil {
		s.fail(err)
		return "", nil
	}
	s.println(s.style.ok.Render(msgEcosystemCreated))
	return name, nil
}

func (s *Session) loadEcosystem() (string, error) {
	name, err := s.prompt("Enter the name of an existing ecosystem: ")
	if err != nil {
		return "", err
	}
	eco, err := s.sim.LoadEcosystem(name)
	if err != nil {
		s.fail(err)
		return "", nil
	}
	s.println(s.style.ok.Render(msgEcosystemLoaded))
	s.printSpecies(eco)
	return name, nil
}

// manage runs the action menu for one ecosystem until the user goes back.
func (s *Session) manage(eco string) error {
	for {
		s.println(s.style.heading.Render("Managing ecosystem " + eco + ":"))
		s.println("1. Add a plant")
		s.println("2. Add an animal")
		s.println("3. Back to the main menu")
		s.println("4. Update an animal's diet")
		s.println("5. Delete a species")
		s.println("6. Interaction between species")
		s.println("7. Population prediction")
		s.println("8. Show species")
		s.println("9. Update conditions")
		s.println("10. Interaction history")

		choice, err := s.readChoice()
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = s.addPlant(eco)
		case 2:
			err = s.addAnimal(eco)
		case 3:
			return nil
		case 4:
			err = s.updateDiet(eco)
		case 5:
			err = s.deleteSpecies(eco)
		case 6:
			err = s.interact(eco)
		case 7:
			s.predict(eco)
		case 8:
			s.showSpecies(eco)
		case 9:
			err = s.updateConditions(eco)
		case 10:
			s.history(eco)
		default:
			s.println(msgIncorrect)
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) addPlant(eco string) error {
	name, err := s.readName("Enter the plant name: ")
	if err != nil {
		return err
	}
	if err := s.sim.AddPlant(eco, name); err != nil {
		s.fail(err)
		return nil
	}
	s.println(s.style.ok.Render("Plant " + name + " added"))
	return nil
}

func (s *Session) addAnimal(eco string) error {
	name, err := s.readName("Enter the animal name: ")
	if err != nil {
		return err
	}
	diet, err := s.readDiet("Enter the diet type (herbivore, carnivore, omnivore): ")
	if err != nil {
		return err
	}
	if err := s.sim.AddAnimal(eco, name, diet); err != nil {
		s.fail(err)
		return nil
	}
	s.println(s.style.ok.Render(fmt.Sprintf("Animal %s (%s) added", name, diet)))
	return nil
}

func (s *Session) updateDiet(eco string) error {
	name, err := s.prompt("Enter the name of the animal to update: ")
	if err != nil {
		return err
	}
	diet, err := s.readDiet("Enter the new diet: ")
	if err != nil {
		return err
	}
	if err := s.sim.UpdateDiet(eco, name, diet); err != nil {
		s.fail(err)
		return nil
	}
	s.println(s.style.ok.Render(fmt.Sprintf("Diet of %s updated to %s", name, diet)))
	return nil
}

func (s *Session) deleteSpecies(eco string) error {
	s.println("What do you want to delete?")
	s.println("1. Plant")
	s.println("2. Animal")
	choice, err := s.readChoice()
	if err != nil {
		return err
	}

	var kind ecosystem.Kind
	switch choice {
	case 1:
		kind = ecosystem.KindPlant
	case 2:
		kind = ecosystem.KindAnimal
	default:
		s.println(msgIncorrect)
		return nil
	}

	name, err := s.prompt(fmt.Sprintf("Enter the name of the %s to remove: ", kind))
	if err != nil {
		return err
	}
	if err := s.sim.RemoveSpecies(eco, name, kind); err != nil {
		s.fail(err)
		return nil
	}
	s.println(s.style.ok.Render(fmt.Sprintf("%s %s removed", capitalize(kind.String()), name)))
	return nil
}

func (s *Session) interact(eco string) error {
	predator, err := s.prompt("Enter the predator name: ")
	if err != nil {
		return err
	}
	prey, err := s.prompt("Enter the prey name: ")
	if err != nil {
		return err
	}
	out, err := s.sim.Interact(eco, predator, prey)
	if err != nil {
		s.fail(err)
		return nil
	}
	if out.Consumed() {
		s.println(s.style.ok.Render(out.Message()))
	} else {
		s.println(out.Message())
	}
	return nil
}

func (s *Session) predict(eco string) {
	f, err := s.sim.Predict(eco)
	if err != nil {
		s.fail(err)
		return
	}
	s.println("Plants population: " + f.Plants.String())
	s.println("Animals population: " + f.Animals.String())
}

func (s *Session) showSpecies(eco string) {
	snap, err := s.sim.LoadEcosystem(eco)
	if err != nil {
		s.fail(err)
		return
	}
	s.printSpecies(snap)
	c := snap.Conditions()
	s.println(fmt.Sprintf("Conditions: temperature %g, humidity %g, available water %g",
		c.Temperature, c.Humidity, c.WaterAmount))
}

func (s *Session) printSpecies(eco *ecosystem.Ecosystem) {
	s.println("Plants:")
	s.printList(eco.Plants())
	s.println("Animals:")
	s.printList(eco.Animals())
}

func (s *Session) printList(list []ecosystem.Species) {
	if len(list) == 0 {
		s.println(s.style.muted.Render("  (none)"))
		return
	}
	for _, sp := range list {
		s.println("  " + sp.String())
	}
}

func (s *Session) updateConditions(eco string) error {
	c, err := s.readConditions()
	if err != nil {
		return err
	}
	if err := s.sim.UpdateConditions(eco, c); err != nil {
		s.fail(err)
		return nil
	}
	s.println(s.style.ok.Render("Conditions updated"))
	return nil
}

func (s *Session) history(eco string) {
	log, err := s.sim.History(eco)
	if err != nil {
		s.fail(err)
		return
	}
	if len(log) == 0 {
		s.println(s.style.muted.Render("No interactions yet"))
		return
	}
	for i, in := range log {
		line := fmt.Sprintf("%d. %s", i+1, in.Text)
		if !in.RecordedAt.IsZero() {
			line += s.style.muted.Render(" (" + humanize.Time(in.RecordedAt) + ")")
		}
		s.println(line)
	}
}

// ── Input helpers ──────────────────────────────────────────────────

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Session) fail(err error) {
	s.println(s.style.err.Render("Error: " + err.Error()))
}

// readLine returns the next input line without surrounding whitespace, or
// io.EOF when input is exhausted.
func (s *Session) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

// readChoice reads a menu number. Non-numeric input yields 0, which no menu
// accepts.
func (s *Session) readChoice() (int, error) {
	line, err := s.prompt(msgChoose)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *Session) readName(label string) (string, error) {
	for {
		name, err := s.prompt(label)
		if err != nil {
			return "", err
		}
		if ecosystem.ValidateName(name) == nil {
			return name, nil
		}
		s.println(msgIncorrectName)
	}
}

func (s *Session) readDiet(label string) (ecosystem.Diet, error) {
	for {
		line, err := s.prompt(label)
		if err != nil {
			return ecosystem.DietNone, err
		}
		d, err := ecosystem.ParseDiet(line)
		if err == nil {
			return d, nil
		}
		s.println(msgIncorrectDiet)
	}
}

func (s *Session) readFloat(label string) (float64, error) {
	for {
		line, err := s.prompt(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(line, 64)
		if err == nil {
			return v, nil
		}
		s.println(msgIncorrectNumber)
	}
}

func (s *Session) readConditions() (ecosystem.Conditions, error) {
	var c ecosystem.Conditions
	var err error
	if c.Temperature, err = s.readFloat("Enter the temperature: "); err != nil {
		return c, err
	}
	if c.Humidity, err = s.readFloat("Enter the humidity: "); err != nil {
		return c, err
	}
	if c.WaterAmount, err = s.readFloat("Enter the available water: "); err != nil {
		return c, err
	}
	return c, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
