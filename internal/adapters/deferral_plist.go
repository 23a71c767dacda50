package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/sys/unix"
	"howett.net/plist"

	"github.com/kandji-inc/kpkg/internal/ports"
	"github.com/kandji-inc/kpkg/internal/types"
)

// DeferralPlistAdapter persists granted delays in a property list keyed
// by target identity and required version. Every operation takes a file
// lock and writes land through a rename, so overlapping audit runs
// cannot corrupt the store.
type DeferralPlistAdapter struct {
	Path string
}

func NewDeferralPlistAdapter(path string) DeferralPlistAdapter {
	return DeferralPlistAdapter{Path: path}
}

// deferralTable maps target key -> required version -> expiry epoch
// seconds.
type deferralTable map[string]map[string]int64

func (a DeferralPlistAdapter) Get(targetKey string, requiredVersion string) (types.DeferralRecord, bool, error) {
	var record types.DeferralRecord
	var found bool
	err := a.withLock(func() error {
		table, err := a.load()
		if err != nil {
			return err
		}
		expiry, ok := table[targetKey][requiredVersion]
		if !ok {
			return nil
		}
		record = types.DeferralRecord{
			TargetKey:       targetKey,
			RequiredVersion: requiredVersion,
			ExpiresAt:       time.Unix(expiry, 0).UTC(),
		}
		found = true
		return nil
	})
	return record, found, err
}

func (a DeferralPlistAdapter) Put(record types.DeferralRecord) error {
	if record.TargetKey == "" || record.RequiredVersion == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("deferral record needs target key and required version")
	}
	return a.withLock(func() error {
		table, err := a.load()
		if err != nil {
			return err
		}
		versions, ok := table[record.TargetKey]
		if !ok {
			versions = map[string]int64{}
			table[record.TargetKey] = versions
		}
		versions[record.RequiredVersion] = record.ExpiresAt.Unix()
		return a.save(table)
	})
}

func (a DeferralPlistAdapter) Delete(targetKey string, requiredVersion string) error {
	return a.withLock(func() error {
		table, err := a.load()
		if err != nil {
			return err
		}
		versions, ok := table[targetKey]
		if !ok {
			return nil
		}
		if _, ok := versions[requiredVersion]; !ok {
			return nil
		}
		delete(versions, requiredVersion)
		if len(versions) == 0 {
			delete(table, targetKey)
		}
		return a.save(table)
	})
}

func (a DeferralPlistAdapter) DeleteTarget(targetKey string) error {
	return a.withLock(func() error {
		table, err := a.load()
		if err != nil {
			return err
		}
		if _, ok := table[targetKey]; !ok {
			return nil
		}
		delete(table, targetKey)
		return a.save(table)
	})
}

func (a DeferralPlistAdapter) List() ([]types.DeferralRecord, error) {
	var records []types.DeferralRecord
	err := a.withLock(func() error {
		table, err := a.load()
		if err != nil {
			return err
		}
		for targetKey, versions := range table {
			for requiredVersion, expiry := range versions {
				records = append(records, types.DeferralRecord{
					TargetKey:       targetKey,
					RequiredVersion: requiredVersion,
					ExpiresAt:       time.Unix(expiry, 0).UTC(),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].TargetKey != records[j].TargetKey {
			return records[i].TargetKey < records[j].TargetKey
		}
		return records[i].RequiredVersion < records[j].RequiredVersion
	})
	return records, nil
}

func (a DeferralPlistAdapter) Prune(now time.Time) (int, error) {
	var pruned int
	err := a.withLock(func() error {
		table, err := a.load()
		if err != nil {
			return err
		}
		cutoff := now.Unix()
		for targetKey, versions := range table {
			for requiredVersion, expiry := range versions {
				if expiry <= cutoff {
					delete(versions, requiredVersion)
					pruned++
				}
			}
			if len(versions) == 0 {
				delete(table, targetKey)
			}
		}
		if pruned == 0 {
			return nil
		}
		return a.save(table)
	})
	if err != nil {
		return 0, err
	}
	return pruned, nil
}

func (a DeferralPlistAdapter) withLock(fn func() error) error {
	if strings.TrimSpace(a.Path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("deferral store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create deferral store directory").
			WithCause(err)
	}
	lock, err := os.OpenFile(a.Path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open deferral store lock").
			WithCause(err)
	}
	defer lock.Close()
	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to lock deferral store").
			WithCause(err)
	}
	defer unix.Flock(int(lock.Fd()), unix.LOCK_UN)
	return fn()
}

func (a DeferralPlistAdapter) load() (deferralTable, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return deferralTable{}, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read deferral store").
			WithCause(err)
	}
	table := deferralTable{}
	if len(data) == 0 {
		return table, nil
	}
	if _, err := plist.Unmarshal(data, &table); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse deferral store").
			WithCause(err)
	}
	return table, nil
}

func (a DeferralPlistAdapter) save(table deferralTable) error {
	data, err := plist.MarshalIndent(table, plist.XMLFormat, "\t")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode deferral store").
			WithCause(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(a.Path), ".deferrals-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stage deferral store").
			WithCause(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write deferral store").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write deferral store").
			WithCause(err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write deferral store").
			WithCause(err)
	}
	if err := os.Rename(tmp.Name(), a.Path); err != nil {
		os.Remove(tmp.Name())
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace deferral store").
			WithCause(err)
	}
	return nil
}

var _ ports.DeferralStorePort = DeferralPlistAdapter{}
