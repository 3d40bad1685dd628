package session

// Help prints the static usage table. It does not require an active
// session; it only describes how to get one.
func (s *Session) Help() {
	s.printf("NetBuddy - network tools and troubleshooting\n")
	s.printf("All operations narrate to the console and also return structured results.\n")
	s.printf("Every operation except Start, Quit and Help requires an active session.\n")
	s.printf("Lifecycle: -------------------------------------------------------------------\n")
	s.printf("  start                      Start a session, required for all operations\n")
	s.printf("  quit                       Cleanly end the session\n")
	s.printf("  help                       Display this screen\n")
	s.printf("Operations: ------------------------------------------------------------------\n")
	s.printf("  test                       Test if this device is online (alias of test-connection)\n")
	s.printf("  ping <address>             Ping a URL or IP address\n")
	s.printf("  measure [address]          Measure your ping (defaults to the first test target)\n")
	s.printf("  send <url> <data>          Send data to a URL\n")
	s.printf("  ip                         Get this device's IP address\n")
	s.printf("  hostname                   Get this device's hostname\n")
	s.printf("  lookup <address>           Get the hostnames of the specified device\n")
	s.printf("  ips                        Get the IP of every device on this network\n")
	s.printf("  hostnames                  Get the hostname of every device on this network\n")
	s.printf("  watch                      Re-run the connectivity test continuously and\n")
	s.printf("                             stream results over WebSocket\n")
	s.printf("Errors: ----------------------------------------------------------------------\n")
	s.printf("  ErrSession                 Base kind for all session errors\n")
	s.printf("  ErrNotStarted              Operation used before starting a session\n")
	s.printf("  ErrPlatformUnsupported     This operating system is not supported\n")
	s.printf("  ErrMissingCommand          The ping command was not found\n")
}
