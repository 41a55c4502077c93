package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"swasthsetu/models"
	"swasthsetu/version"

	"github.com/chzyer/readline"
)

// CLIHttp is the admin console talking to a running server over HTTP
type CLIHttp struct {
	rl      *readline.Instance
	running bool
	client  *Client
}

// NewCLIHttp creates a new HTTP client CLI instance
func NewCLIHttp(serverURL string) (*CLIHttp, error) {
	client := NewClient(serverURL)

	if err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLIHttp{
		rl:      rl,
		running: true,
		client:  client,
	}, nil
}

// Start runs the CLI loop
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLIHttp) printWelcome() {
	PrintBannerLines("Swasth Setu - Admin Console", "v"+version.GetVersion())
	fmt.Printf("\nConnected to: %s\n", c.client.baseURL)
	fmt.Println("Type 'help' for available commands")
}

func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "login":
		c.handleLogin(args)
	case "doctors":
		c.handleDoctors(args)
	case "slots":
		c.handleSlots(args)
	case "pharmacies":
		c.handlePharmacies()
	case "appointments", "appt":
		c.handleAppointments()
	case "users":
		c.handleUsers()
	case "toggle":
		c.handleToggleUser(args)
	case "applications", "apps":
		c.handleApplications(args)
	case "approve", "reject":
		c.handleDecision(cmd, args)
	case "notifications", "notif":
		c.handleNotifications()
	case "health":
		c.handleHealth()
	case "stats":
		c.handleStats()
	case "version":
		c.handleVersion()
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		c.handleExit()
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

func (c *CLIHttp) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"login <username>", "Log in (prompts for password)"},
		{"", ""},
		{"BROWSE:", ""},
		{"doctors [specialty]", "List doctors, optionally by specialty"},
		{"slots <doctor_id> <date>", "Free slots for a doctor (date YYYY-MM-DD)"},
		{"pharmacies", "List active pharmacies"},
		{"appointments", "List your appointments (login required)"},
		{"notifications", "List your notifications (login required)"},
		{"", ""},
		{"ADMINISTRATION (staff login required):", ""},
		{"users", "List all accounts"},
		{"toggle <user_id>", "Enable/disable an account"},
		{"applications <doctor|pharmacist> [status]", "List role applications"},
		{"approve <doctor|pharmacist> <id>", "Approve an application"},
		{"reject <doctor|pharmacist> <id>", "Reject an application"},
		{"", ""},
		{"SERVER:", ""},
		{"health", "Server health"},
		{"stats", "Runtime metrics"},
		{"version", "Server build info"},
		{"clear", "Clear the screen"},
		{"exit, quit, q", "Exit"},
	}

	for _, cmd := range commands {
		if cmd[0] == "" {
			fmt.Println()
			continue
		}
		if cmd[1] == "" {
			fmt.Printf("  %s\n", cmd[0])
			continue
		}
		fmt.Printf("  %-42s %s\n", cmd[0], cmd[1])
	}
	fmt.Println()
}

func (c *CLIHttp) handleLogin(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: login <username>")
		return
	}

	password, err := c.rl.ReadPassword("Password: ")
	if err != nil {
		fmt.Printf("✗ Failed to read password: %v\n", err)
		return
	}

	if err := c.client.Login(args[0], string(password)); err != nil {
		fmt.Printf("✗ Login failed: %v\n", err)
		return
	}
	fmt.Printf("✓ Logged in as %s\n", c.client.username)
}

func (c *CLIHttp) handleDoctors(args []string) {
	path := "/api/doctors"
	if len(args) > 0 {
		path += "?specialty=" + args[0]
	}

	var doctors []models.DoctorRead
	if err := c.client.Get(path, &doctors); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	if len(doctors) == 0 {
		fmt.Println("No doctors found")
		return
	}

	fmt.Printf("%-5s %-24s %-20s %-6s %-7s %s\n", "ID", "NAME", "SPECIALTY", "FEE", "RATING", "AVAILABLE")
	for _, d := range doctors {
		fmt.Printf("%-5d %-24s %-20s %-6.0f %-7.1f %v\n",
			d.ID, d.Name, d.Specialty, d.Fee, d.Rating, d.Available)
	}
}

func (c *CLIHttp) handleSlots(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: slots <doctor_id> <date YYYY-MM-DD>")
		return
	}

	var out struct {
		Day     string   `json:"day"`
		Slots   []string `json:"available_slots"`
		Message string   `json:"message"`
	}
	if err := c.client.Get("/api/doctors/"+args[0]+"/availability?date="+args[1], &out); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}

	if out.Message != "" {
		fmt.Println(out.Message)
		return
	}
	fmt.Printf("%s (%s): %s\n", args[1], out.Day, strings.Join(out.Slots, " "))
}

func (c *CLIHttp) handlePharmacies() {
	var rows []models.PharmacistRead
	if err := c.client.Get("/api/pharmacy/stores", &rows); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Println("No pharmacies found")
		return
	}

	fmt.Printf("%-5s %-26s %-14s %s\n", "ID", "STORE", "PHONE", "ADDRESS")
	for _, p := range rows {
		fmt.Printf("%-5d %-26s %-14s %s\n", p.ID, p.StoreName, p.Phone, p.StoreAddress)
	}
}

func (c *CLIHttp) handleAppointments() {
	if !c.requireLogin() {
		return
	}

	var appts []models.AppointmentRead
	if err := c.client.Get("/api/appointments", &appts); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	if len(appts) == 0 {
		fmt.Println("No appointments")
		return
	}

	fmt.Printf("%-5s %-12s %-7s %-22s %-12s %s\n", "ID", "DATE", "TIME", "DOCTOR", "STATUS", "TYPE")
	for _, a := range appts {
		fmt.Printf("%-5d %-12s %-7s %-22s %-12s %s\n",
			a.ID, a.ScheduledDate, a.ScheduledTime, a.DoctorName, a.Status, a.Type)
	}
}

func (c *CLIHttp) handleUsers() {
	if !c.requireLogin() {
		return
	}

	var users []models.UserRead
	if err := c.client.Get("/api/admin/users", &users); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}

	fmt.Printf("%-5s %-18s %-30s %-8s %-10s %s\n", "ID", "USERNAME", "EMAIL", "DOCTOR", "PHARMACY", "ACTIVE")
	for _, u := range users {
		fmt.Printf("%-5d %-18s %-30s %-8v %-10v %v\n",
			u.ID, u.Username, u.Email, u.IsDoctor, u.IsPharmacist, u.IsActive)
	}
}

func (c *CLIHttp) handleToggleUser(args []string) {
	if !c.requireLogin() {
		return
	}
	if len(args) != 1 {
		fmt.Println("Usage: toggle <user_id>")
		return
	}

	var out struct {
		ID       uint `json:"id"`
		IsActive bool `json:"is_active"`
	}
	if err := c.client.Post("/api/admin/users/"+args[0]+"/toggle", nil, &out); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	fmt.Printf("✓ User %d active=%v\n", out.ID, out.IsActive)
}

func (c *CLIHttp) handleApplications(args []string) {
	if !c.requireLogin() {
		return
	}
	if len(args) < 1 {
		fmt.Println("Usage: applications <doctor|pharmacist> [status]")
		return
	}

	path := "/api/admin/applications/" + args[0]
	if len(args) > 1 {
		path += "?status=" + args[1]
	}

	var apps []map[string]interface{}
	if err := c.client.Get(path, &apps); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	if len(apps) == 0 {
		fmt.Println("No applications")
		return
	}

	for _, app := range apps {
		pretty, _ := json.MarshalIndent(app, "", "  ")
		fmt.Println(string(pretty))
	}
}

func (c *CLIHttp) handleDecision(verb string, args []string) {
	if !c.requireLogin() {
		return
	}
	if len(args) != 2 {
		fmt.Printf("Usage: %s <doctor|pharmacist> <id>\n", verb)
		return
	}

	path := fmt.Sprintf("/api/admin/applications/%s/%s/%s", args[0], args[1], verb)
	var out map[string]interface{}
	if err := c.client.Post(path, map[string]string{}, &out); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	fmt.Printf("✓ Application %s %sed\n", args[1], verb)
}

func (c *CLIHttp) handleNotifications() {
	if !c.requireLogin() {
		return
	}

	var items []models.Notification
	if err := c.client.Get("/api/notifications", &items); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("No notifications")
		return
	}

	for _, n := range items {
		read := " "
		if n.IsRead {
			read = "✓"
		}
		fmt.Printf("[%s] #%-4d %-24s %s\n", read, n.ID, n.Title, n.Message)
	}
}

// handleHealth prints the health payload; it is a bare object, not the envelope.
func (c *CLIHttp) handleHealth() {
	resp, err := c.client.doRequest("GET", "/api/health", nil)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Printf("✗ failed to decode health: %v\n", err)
		return
	}
	pretty, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(pretty))
}

func (c *CLIHttp) handleStats() {
	resp, err := c.client.doRequest("GET", "/api/metrics", nil)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Printf("✗ failed to decode metrics: %v\n", err)
		return
	}
	pretty, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(pretty))
}

func (c *CLIHttp) handleVersion() {
	var out map[string]interface{}
	if err := c.client.Get("/api/version", &out); err != nil {
		fmt.Printf("✗ %v\n", err)
		return
	}
	pretty, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(pretty))
}

func (c *CLIHttp) requireLogin() bool {
	if !c.client.LoggedIn() {
		fmt.Println("Login required. Use: login <username>")
		return false
	}
	return true
}

func (c *CLIHttp) clearScreen() {
	fmt.Print("\033[2J\033[H")
}

func (c *CLIHttp) handleExit() {
	fmt.Println("Goodbye!")
	c.running = false
}
