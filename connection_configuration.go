package gosearchgate

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/BurntSushi/toml"
)

const (
	defaultProtocol       = "https"
	defaultPort           = 9200
	defaultSubmitTimeout  = 60 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// LoadConnectionConfig reads a connections.toml file with one table per
// connection id and returns a resolver over it. An empty path falls back to
// $SEARCHGATE_HOME/connections.toml, then ~/.searchgate/connections.toml.
//
//	[logs-s3]
//	host = "search.example.com"
//	port = 9200
//	protocol = "https"
//	user = "gateway"
//	password = "****"
//	datasource = "my_glue"
//	submit_timeout_seconds = 90
//	request_timeout_seconds = 15
func LoadConnectionConfig(filePath string) (*StaticConnectionResolver, error) {
	if filePath == "" {
		filePath = connectionConfigPath()
	}
	raw := make(map[string]map[string]interface{})
	if _, err := toml.DecodeFile(filePath, &raw); err != nil {
		return nil, fmt.Errorf("parsing connections config failed: %w", err)
	}
	connections := make([]*ConnectionInfo, 0, len(raw))
	for id, table := range raw {
		conn, err := parseConnectionTable(id, table)
		if err != nil {
			return nil, err
		}
		connections = append(connections, conn)
	}
	return NewStaticConnectionResolver(connections...), nil
}

// connectionConfigPath returns the config location, honoring
// SEARCHGATE_HOME when set.
func connectionConfigPath() string {
	if home := os.Getenv("SEARCHGATE_HOME"); home != "" {
		return home + "/connections.toml"
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "connections.toml"
	}
	return userHome + "/.searchgate/connections.toml"
}

func parseConnectionTable(id string, table map[string]interface{}) (*ConnectionInfo, error) {
	conn := &ConnectionInfo{
		ConnectionID:   id,
		Protocol:       defaultProtocol,
		Port:           defaultPort,
		Datasource:     id,
		SubmitTimeout:  defaultSubmitTimeout,
		RequestTimeout: defaultRequestTimeout,
	}
	var parsingErr error
	for key, value := range table {
		switch strings.ToLower(key) {
		case "host":
			conn.Host, parsingErr = parseString(value)
		case "port":
			conn.Port, parsingErr = parseInt(value)
		case "protocol":
			conn.Protocol, parsingErr = parseString(value)
		case "user", "username":
			conn.User, parsingErr = parseString(value)
		case "password":
			conn.Password, parsingErr = parseString(value)
		case "datasource":
			conn.Datasource, parsingErr = parseString(value)
		case "submit_timeout_seconds":
			var secs int
			secs, parsingErr = parseInt(value)
			conn.SubmitTimeout = time.Duration(secs) * time.Second
		case "request_timeout_seconds":
			var secs int
			secs, parsingErr = parseInt(value)
			conn.RequestTimeout = time.Duration(secs) * time.Second
		}
		if parsingErr != nil {
			return nil, fmt.Errorf("connection %v: invalid value for %v: %w", id, key, parsingErr)
		}
	}
	if conn.Host == "" {
		return nil, fmt.Errorf("connection %v: host is required", id)
	}
	return conn, nil
}

func parseString(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", value)
	}
	return s, nil
}

func parseInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}
