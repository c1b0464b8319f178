package plugin

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/rpc"
	"os/exec"

	hplugin "github.com/hashicorp/go-plugin"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// handshake is the shared-prefix set of §4.8: a symbol boundary compiled
// into the host and every plugin binary. Everything on the other side of
// this handshake lives entirely inside the plugin's own process and can
// never collide with the host's symbol table, because they never share an
// address space — isolation by OS process rather than by classloader trick.
var handshake = hplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "THAIYYAL_DATASOURCE_PLUGIN",
	MagicCookieValue: "a1f2e9c4-datasource",
}

func init() {
	// Registering the concrete types a manifest-declared plugin's config and
	// payload values actually take lets net/rpc's gob wire format carry
	// map[string]any/[]any values without every plugin needing its own
	// registration. Plugins that exchange richer custom types must register
	// them in their own init() on both sides of the boundary.
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
}

// dataSourcePlugin implements hashicorp/go-plugin's plugin.Plugin for the
// net/rpc transport: Server is only ever called inside a plugin binary's own
// main(), Client is only ever called by this host process.
type dataSourcePlugin struct {
	Impl types.Plugin
}

func (p *dataSourcePlugin) Server(*hplugin.MuxBroker) (interface{}, error) {
	return &rpcServer{impl: p.Impl}, nil
}

func (p *dataSourcePlugin) Client(b *hplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcClient{client: c}, nil
}

// rpcArgs/rpcReply pairs below are the wire shapes for each Plugin method;
// net/rpc requires a single argument and a single reply value per call.

type initializeArgs struct{ GlobalConfig map[string]interface{} }
type validateConfigArgs struct{ Config map[string]interface{} }
type createConnectionArgs struct{ Config map[string]interface{} }
type testConnectionArgs struct{ Config map[string]interface{} }
type readDataArgs struct{ ConnectionID string }
type connectionOpArgs struct{ ConnectionID string }

type metadataReply struct {
	ID, Name, Version, Author, Description string
	SupportedParameters                    []types.ParameterSpec
}
type validationReply struct{ Result types.ValidationResult }
type createConnectionReply struct{ ConnectionID string }
type testConnectionReply struct{ Result types.TestResult }
type readDataReply struct{ Data interface{} }
type boolReply struct{ Value bool }
type connectionInfoReply struct{ Info map[string]interface{} }

// rpcServer runs inside the plugin process and dispatches incoming RPC
// calls to the real, in-process types.Plugin implementation.
type rpcServer struct {
	impl        types.Plugin
	connections map[string]types.Connection
}

func (s *rpcServer) Metadata(args interface{}, reply *metadataReply) error {
	reply.ID = s.impl.ID()
	reply.Name = s.impl.Name()
	reply.Version = s.impl.Version()
	reply.Author = s.impl.Author()
	reply.Description = s.impl.Description()
	reply.SupportedParameters = s.impl.SupportedParameters()
	return nil
}

func (s *rpcServer) Initialize(args initializeArgs, reply *struct{}) error {
	return s.impl.Initialize(args.GlobalConfig)
}

func (s *rpcServer) ValidateConfig(args validateConfigArgs, reply *validationReply) error {
	reply.Result = s.impl.ValidateConfig(args.Config)
	return nil
}

func (s *rpcServer) CreateConnection(args createConnectionArgs, reply *createConnectionReply) error {
	conn, err := s.impl.CreateConnection(args.Config, context.Background())
	if err != nil {
		return err
	}
	if s.connections == nil {
		s.connections = make(map[string]types.Connection)
	}
	id := fmt.Sprintf("conn-%d", len(s.connections)+1)
	s.connections[id] = conn
	reply.ConnectionID = id
	return nil
}

func (s *rpcServer) ReadData(args readDataArgs, reply *readDataReply) error {
	conn, ok := s.connections[args.ConnectionID]
	if !ok {
		return fmt.Errorf("unknown connection id %q", args.ConnectionID)
	}
	data, err := conn.ReadData(context.Background())
	if err != nil {
		return err
	}
	reply.Data = data
	return nil
}

func (s *rpcServer) CloseConnection(args connectionOpArgs, reply *struct{}) error {
	conn, ok := s.connections[args.ConnectionID]
	if !ok {
		return nil
	}
	delete(s.connections, args.ConnectionID)
	return conn.Close()
}

func (s *rpcServer) TestConnection(args testConnectionArgs, reply *testConnectionReply) error {
	result, err := s.impl.TestConnection(args.Config)
	reply.Result = result
	return err
}

func (s *rpcServer) Destroy(args struct{}, reply *struct{}) error {
	return s.impl.Destroy()
}

// rpcClient runs in the host process and implements types.Plugin by
// forwarding every call across the process boundary.
type rpcClient struct {
	client *rpc.Client
	meta   metadataReply
}

func (c *rpcClient) fetchMetadata() {
	_ = c.client.Call("Plugin.Metadata", struct{}{}, &c.meta)
}

func (c *rpcClient) ID() string          { return c.meta.ID }
func (c *rpcClient) Name() string        { return c.meta.Name }
func (c *rpcClient) Version() string     { return c.meta.Version }
func (c *rpcClient) Author() string      { return c.meta.Author }
func (c *rpcClient) Description() string { return c.meta.Description }
func (c *rpcClient) SupportedParameters() []types.ParameterSpec {
	return c.meta.SupportedParameters
}

func (c *rpcClient) Initialize(globalConfig map[string]interface{}) error {
	return c.client.Call("Plugin.Initialize", initializeArgs{globalConfig}, &struct{}{})
}

func (c *rpcClient) ValidateConfig(config map[string]interface{}) types.ValidationResult {
	var reply validationReply
	if err := c.client.Call("Plugin.ValidateConfig", validateConfigArgs{config}, &reply); err != nil {
		return types.ValidationResult{Errors: []string{err.Error()}}
	}
	return reply.Result
}

func (c *rpcClient) CreateConnection(config map[string]interface{}, ctx context.Context) (types.Connection, error) {
	var reply createConnectionReply
	if err := c.client.Call("Plugin.CreateConnection", createConnectionArgs{config}, &reply); err != nil {
		return nil, err
	}
	return &rpcConnection{client: c.client, id: reply.ConnectionID}, nil
}

func (c *rpcClient) TestConnection(config map[string]interface{}) (types.TestResult, error) {
	var reply testConnectionReply
	err := c.client.Call("Plugin.TestConnection", testConnectionArgs{config}, &reply)
	return reply.Result, err
}

func (c *rpcClient) Destroy() error {
	return c.client.Call("Plugin.Destroy", struct{}{}, &struct{}{})
}

// rpcConnection is the host-side handle for a Connection that actually
// lives inside the plugin process.
type rpcConnection struct {
	client *rpc.Client
	id     string
	closed bool
}

func (c *rpcConnection) ReadData(ctx context.Context) (interface{}, error) {
	var reply readDataReply
	if err := c.client.Call("Plugin.ReadData", readDataArgs{c.id}, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

func (c *rpcConnection) IsConnected() bool { return !c.closed }

func (c *rpcConnection) ConnectionInfo() map[string]interface{} {
	return map[string]interface{}{"connectionId": c.id}
}

func (c *rpcConnection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Call("Plugin.CloseConnection", connectionOpArgs{c.id}, &struct{}{})
}

// isolatedProcess owns the subprocess a plugin archive's entry point is
// launched as, and the RPC-backed types.Plugin adapter that forwards to it.
type isolatedProcess struct {
	client *hplugin.Client
	Plugin types.Plugin
}

// launchIsolated starts a plugin archive's entry point as its own OS
// process and returns the RPC-backed adapter plus the process handle for
// later teardown. This is the process-boundary reinterpretation of spec
// §4.8's "isolated symbol space": the entry point binary never shares an
// address space with the host, so its own imports and dependency versions
// can never collide with the host's.
func launchIsolated(entryPoint string, args ...string) (*isolatedProcess, error) {
	client := hplugin.NewClient(&hplugin.ClientConfig{
		HandshakeConfig: handshake,
		Plugins:         map[string]hplugin.Plugin{"datasource": &dataSourcePlugin{}},
		Cmd:             exec.Command(entryPoint, args...),
		AllowedProtocols: []hplugin.Protocol{hplugin.ProtocolNetRPC},
	})

	rpcClientConn, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("launching plugin process: %w", err)
	}

	raw, err := rpcClientConn.Dispense("datasource")
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispensing plugin instance: %w", err)
	}

	adapter, ok := raw.(*rpcClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %q returned unexpected client type %T", entryPoint, raw)
	}
	adapter.fetchMetadata()

	return &isolatedProcess{client: client, Plugin: adapter}, nil
}

// shutdown kills the isolated process. Plugin.Destroy should have already
// been called through the registry's normal unregister path; this is the
// final process-level teardown regardless of how Destroy behaved.
func (p *isolatedProcess) shutdown() {
	p.client.Kill()
}
