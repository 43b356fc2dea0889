// Package pathops implements the path operations: recursive
// mkdir, move, rename, trash/restore/permanent-delete, search/find/tree,
// and single-file copy.
package pathops

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// Service implements the path operations for one Identity.
type Service struct {
	Transport *transport.Client
	Directory *directory.Service
	Cache     *cache.Listing
	Resolver  *pathresolve.Resolver
	Identity  model.Identity
	Log       logrus.FieldLogger
}

// New builds a path operations Service.
func New(tr *transport.Client, dir *directory.Service, c *cache.Listing, resolver *pathresolve.Resolver, id model.Identity, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{Transport: tr, Directory: dir, Cache: c, Resolver: resolver, Identity: id, Log: log}
}

func (s *Service) masterKey() []byte {
	return cryptoutil.DeriveEnvelopeKey(s.Identity.CurrentMasterKey())
}

// MkdirAll implements "mkdir -p" semantics: walk existing
// components via the resolver, and for each missing component, create it.
// Only the final created component receives the optional timestamps.
func (s *Service) MkdirAll(ctx context.Context, path string, creationTimeMs, modificationTimeMs *int64) (string, error) {
	components := splitPath(path)
	currentParent := s.Identity.BaseFolderID
	if len(components) == 0 {
		return currentParent, nil
	}

	for i, component := range components {
		isLast := i == len(components)-1

		folders, err := s.Directory.ListFolders(ctx, currentParent)
		if err != nil {
			return "", err
		}
		var matched *model.FolderHandle
		for idx := range folders {
			if folders[idx].Name == component {
				matched = &folders[idx]
				break
			}
		}
		if matched != nil {
			currentParent = matched.ID
			continue
		}

		var ct, mt *int64
		if isLast {
			ct, mt = creationTimeMs, modificationTimeMs
		}
		newID, err := s.createDirOnce(ctx, component, currentParent, ct, mt)
		if err != nil {
			return "", err
		}
		s.Cache.Invalidate(currentParent)
		currentParent = newID
	}
	return currentParent, nil
}

// createDirOnce performs one dir/create call, handling the HTTP 409 /
// already-exists race: on conflict, wait 1s, invalidate the
// parent's cache, re-list, and take whichever id won (last-writer
// deterministic, since both writers subsequently observe the same listing).
func (s *Service) createDirOnce(ctx context.Context, name, parent string, creationTimeMs, modificationTimeMs *int64) (string, error) {
	newID, err := cryptoutil.NewUUID()
	if err != nil {
		return "", err
	}
	encName, err := envelope.EncodeFolderName(s.masterKey(), name)
	if err != nil {
		return "", err
	}
	nameHashed := s.Directory.HashName(name)

	err = s.Transport.DirCreate(ctx, transport.DirCreateRequest{
		UUID:             newID,
		Name:             encName,
		NameHashed:       nameHashed,
		Parent:           parent,
		CreationTime:     creationTimeMs,
		ModificationTime: modificationTimeMs,
	})
	if err == nil {
		return newID, nil
	}

	var httpErr *transport.HTTPStatusError
	if !isConflict(err, &httpErr) {
		return "", err
	}

	time.Sleep(1 * time.Second)
	s.Cache.Invalidate(parent)
	folders, err2 := s.Directory.ListFolders(ctx, parent)
	if err2 != nil {
		return "", err
	}
	for idx := range folders {
		if folders[idx].Name == name {
			return folders[idx].ID, nil
		}
	}
	return "", err
}

func isConflict(err error, target **transport.HTTPStatusError) bool {
	if e, ok := err.(*transport.HTTPStatusError); ok {
		*target = e
		return e.StatusCode == 409
	}
	return false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
