// Command mcproxy is a man-in-the-middle proxy for the Minecraft
// protocol: it accepts client connections, dials the real server, and
// forwards every packet between them while letting plugins intercept
// traffic on either leg.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/seiftnesse/mcproxy/config"
	"github.com/seiftnesse/mcproxy/logger"
	"github.com/seiftnesse/mcproxy/plugin"
	"github.com/seiftnesse/mcproxy/plugin/forwardall"
	"github.com/seiftnesse/mcproxy/plugin/rcon"
	"github.com/seiftnesse/mcproxy/proxyctl"
)

// pluginFlag collects repeated -plugin values in the order given.
type pluginFlag []string

func (p *pluginFlag) String() string { return strings.Join(*p, ",") }
func (p *pluginFlag) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func main() {
	var (
		upstreamHost         string
		plugins              pluginFlag
		verbose              bool
		configPath           string
		compressionThreshold int
		encrypt              bool
	)

	flag.StringVar(&upstreamHost, "upstream-host", "localhost", "hostname of the real Minecraft server")
	flag.Var(&plugins, "plugin", "repeatable; \"name[:args]\" plugin to attach to every session")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.StringVar(&configPath, "config", "", "optional JSON or YAML config file (detected by extension)")
	flag.IntVar(&compressionThreshold, "compression-threshold", -1, "packet size at or above which frames are zlib-compressed, -1 to disable")
	flag.BoolVar(&encrypt, "encrypt", false, "enable AES-128 CFB8 once key exchange completes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <listen-port> <upstream-port>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	listenPort, err := strconv.ParseUint(flag.Arg(0), 10, 16)
	if err != nil {
		logger.Fatal("mcproxy: invalid listen port %q: %v", flag.Arg(0), err)
	}
	upstreamPort, err := strconv.ParseUint(flag.Arg(1), 10, 16)
	if err != nil {
		logger.Fatal("mcproxy: invalid upstream port %q: %v", flag.Arg(1), err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Fatal("mcproxy: %v", err)
	}
	cfg.ListenAddress = fmt.Sprintf("0.0.0.0:%d", listenPort)
	cfg.UpstreamHost = upstreamHost
	cfg.UpstreamPort = uint16(upstreamPort)
	cfg.CompressionThreshold = compressionThreshold
	cfg.AllowEncryption = encrypt
	cfg.Verbose = verbose
	if len(plugins) > 0 {
		cfg.Plugins = []string(plugins)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := logger.SetGlobalLevelFromString(cfg.LogLevel); err != nil {
		logger.Warn("mcproxy: %v, defaulting to info", err)
	}

	attached, err := resolvePlugins(cfg.Plugins)
	if err != nil {
		logger.Fatal("mcproxy: %v", err)
	}

	server, err := proxyctl.New(cfg, attached)
	if err != nil {
		logger.Fatal("mcproxy: %v", err)
	}

	logger.Info("mcproxy: listening on %s, forwarding to %s:%d", cfg.ListenAddress, cfg.UpstreamHost, cfg.UpstreamPort)
	if err := server.Serve(); err != nil {
		logger.Fatal("mcproxy: %v", err)
	}
}

// loadConfig starts from config.DefaultConfig and, if path is set,
// overlays a JSON or YAML file chosen by its extension.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return config.LoadConfigYAML(path)
	}
	return config.LoadConfig(path)
}

// resolvePlugins turns "-plugin" names into attached proxyctl.Plugins.
// The "name:args" form is reserved for plugins that need a backend
// address (rcon, seen) or a routing table (router); forwardall and a
// bare "seen" ignore any trailing args. An empty list still attaches
// forwardall, so a freshly started proxy forwards traffic rather than
// hanging with zero handlers on either leg.
func resolvePlugins(names []string) ([]proxyctl.Plugin, error) {
	if len(names) == 0 {
		return []proxyctl.Plugin{forwardall.New()}, nil
	}

	result := make([]proxyctl.Plugin, 0, len(names))
	for _, spec := range names {
		name, args, _ := strings.Cut(spec, ":")
		switch name {
		case "forwardall":
			result = append(result, forwardall.New())
		case "rcon":
			addr, password, _ := strings.Cut(args, "@")
			if addr == "" {
				return nil, fmt.Errorf("plugin %q: expected \"rcon:host:port@password\"", spec)
			}
			client := rcon.New(addr, password, 5*time.Second)
			result = append(result, rcon.ChatPlugin(client))
		case "seen":
			store, err := seenStore(args)
			if err != nil {
				return nil, fmt.Errorf("plugin %q: %w", spec, err)
			}
			result = append(result, plugin.SeenPlugin(store))
		case "router":
			routes, err := parseRoutes(args)
			if err != nil {
				return nil, fmt.Errorf("plugin %q: %w", spec, err)
			}
			result = append(result, plugin.Router(routes))
		default:
			return nil, fmt.Errorf("unknown plugin %q", name)
		}
	}
	return result, nil
}

// seenStore returns an in-process store, or dials a remote store over
// yamux when args names an administrative TCP address.
func seenStore(args string) (plugin.KeyValueStore, error) {
	if args == "" {
		return plugin.NewMemoryStore(), nil
	}
	return plugin.DialRemoteStore(args)
}

// parseRoutes turns "host1=addr1,host2=addr2" into a StaticResolver.
func parseRoutes(args string) (plugin.StaticResolver, error) {
	routes := make(plugin.StaticResolver)
	for _, pair := range strings.Split(args, ",") {
		host, addr, ok := strings.Cut(pair, "=")
		if !ok || host == "" || addr == "" {
			return nil, fmt.Errorf("expected \"host1=addr1,host2=addr2\", got %q", args)
		}
		routes[host] = addr
	}
	return routes, nil
}
