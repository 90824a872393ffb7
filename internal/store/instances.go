// Package store persists tool instances in a SQLite table. It is the single
// durable owner of instance state; everything else holds instances only for
// the duration of one operation.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"toolctl/internal/tools"
)

// ErrDuplicateID is returned by AddInstance when the id already exists.
var ErrDuplicateID = errors.New("实例 ID 已存在")

// InstanceDB is the durable table of tool instances, keyed by instance id.
type InstanceDB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the instance database at path.
func Open(path string) (*InstanceDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开实例数据库失败: %w", err)
	}
	// Instance writes are short and serialized by the registry; a single
	// connection keeps SQLite locking out of the picture.
	db.SetMaxOpenConns(1)
	return &InstanceDB{db: db, path: path}, nil
}

// Path returns the backing file path.
func (s *InstanceDB) Path() string { return s.path }

// Close releases the underlying handle.
func (s *InstanceDB) Close() error { return s.db.Close() }

// InitTables creates the schema if missing. Idempotent.
func (s *InstanceDB) InitTables() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS tool_instances (
	instance_id    TEXT PRIMARY KEY,
	base_id        TEXT NOT NULL,
	tool_name      TEXT NOT NULL,
	tool_type      TEXT NOT NULL,
	install_method TEXT NOT NULL DEFAULT '',
	installed      INTEGER NOT NULL DEFAULT 0,
	version        TEXT NOT NULL DEFAULT '',
	install_path   TEXT NOT NULL DEFAULT '',
	installer_path TEXT NOT NULL DEFAULT '',
	wsl_distro     TEXT NOT NULL DEFAULT '',
	ssh_config     TEXT NOT NULL DEFAULT '',
	is_builtin     INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_instances_base ON tool_instances(base_id);
`)
	if err != nil {
		return fmt.Errorf("初始化实例表失败: %w", err)
	}
	return nil
}

const instanceColumns = `instance_id, base_id, tool_name, tool_type, install_method,
	installed, version, install_path, installer_path, wsl_distro, ssh_config,
	is_builtin, created_at, updated_at`

// HasLocalTools reports whether any local rows exist (first-run check).
func (s *InstanceDB) HasLocalTools() (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tool_instances WHERE tool_type = ?`, string(tools.TypeLocal)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetAllInstances returns every instance, ordered by base id then instance id
// so callers get a stable listing.
func (s *InstanceDB) GetAllInstances() ([]tools.ToolInstance, error) {
	return s.queryInstances(`SELECT ` + instanceColumns + ` FROM tool_instances ORDER BY base_id, instance_id`)
}

// GetLocalInstances returns only local rows.
func (s *InstanceDB) GetLocalInstances() ([]tools.ToolInstance, error) {
	return s.queryInstances(`SELECT `+instanceColumns+` FROM tool_instances WHERE tool_type = ? ORDER BY base_id, instance_id`, string(tools.TypeLocal))
}

// GetInstance fetches one instance by id; the bool reports presence.
func (s *InstanceDB) GetInstance(id string) (tools.ToolInstance, bool, error) {
	rows, err := s.queryInstances(`SELECT `+instanceColumns+` FROM tool_instances WHERE instance_id = ?`, id)
	if err != nil {
		return tools.ToolInstance{}, false, err
	}
	if len(rows) == 0 {
		return tools.ToolInstance{}, false, nil
	}
	return rows[0], true, nil
}

// InstanceExists reports whether an id is present.
func (s *InstanceDB) InstanceExists(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tool_instances WHERE instance_id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddInstance inserts a new row, failing with ErrDuplicateID on id collision.
func (s *InstanceDB) AddInstance(inst *tools.ToolInstance) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	exists, err := s.InstanceExists(inst.InstanceID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, inst.InstanceID)
	}
	return s.exec(`INSERT INTO tool_instances (`+instanceColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, inst)
}

// UpsertInstance inserts or replaces by id.
func (s *InstanceDB) UpsertInstance(inst *tools.ToolInstance) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	return s.exec(`INSERT OR REPLACE INTO tool_instances (`+instanceColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, inst)
}

// UpdateInstance rewrites an existing row in place.
func (s *InstanceDB) UpdateInstance(inst *tools.ToolInstance) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	sshJSON, err := marshalSSH(inst.SSHConfig)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE tool_instances SET
		base_id = ?, tool_name = ?, tool_type = ?, install_method = ?,
		installed = ?, version = ?, install_path = ?, installer_path = ?,
		wsl_distro = ?, ssh_config = ?, is_builtin = ?, created_at = ?, updated_at = ?
		WHERE instance_id = ?`,
		inst.BaseID, inst.ToolName, string(inst.ToolType), string(inst.InstallMethod),
		boolToInt(inst.Installed), inst.Version, inst.InstallPath, inst.InstallerPath,
		inst.WSLDistro, sshJSON, boolToInt(inst.IsBuiltin), inst.CreatedAt, inst.UpdatedAt,
		inst.InstanceID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("实例不存在: %s", inst.InstanceID)
	}
	return nil
}

// DeleteInstance removes a row by id. Deleting a missing id is a no-op.
func (s *InstanceDB) DeleteInstance(id string) error {
	_, err := s.db.Exec(`DELETE FROM tool_instances WHERE instance_id = ?`, id)
	return err
}

func (s *InstanceDB) exec(query string, inst *tools.ToolInstance) error {
	sshJSON, err := marshalSSH(inst.SSHConfig)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(query,
		inst.InstanceID, inst.BaseID, inst.ToolName, string(inst.ToolType),
		string(inst.InstallMethod), boolToInt(inst.Installed), inst.Version,
		inst.InstallPath, inst.InstallerPath, inst.WSLDistro, sshJSON,
		boolToInt(inst.IsBuiltin), inst.CreatedAt, inst.UpdatedAt)
	return err
}

func (s *InstanceDB) queryInstances(query string, args ...any) ([]tools.ToolInstance, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tools.ToolInstance
	for rows.Next() {
		var inst tools.ToolInstance
		var toolType, method, sshJSON string
		var installed, builtin int
		if err := rows.Scan(&inst.InstanceID, &inst.BaseID, &inst.ToolName, &toolType,
			&method, &installed, &inst.Version, &inst.InstallPath, &inst.InstallerPath,
			&inst.WSLDistro, &sshJSON, &builtin, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
			return nil, err
		}
		inst.ToolType = tools.ToolType(toolType)
		inst.InstallMethod = tools.InstallMethod(method)
		inst.Installed = installed != 0
		inst.IsBuiltin = builtin != 0
		if sshJSON != "" {
			var cfg tools.SSHConfig
			if err := json.Unmarshal([]byte(sshJSON), &cfg); err != nil {
				return nil, fmt.Errorf("ssh_config 解析失败 (%s): %w", inst.InstanceID, err)
			}
			inst.SSHConfig = &cfg
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func marshalSSH(cfg *tools.SSHConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
