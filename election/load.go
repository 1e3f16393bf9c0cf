package election

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-verifier/signing"
)

// file and directory names of the dataset layout
const (
	dirSetup                 = "setup"
	dirTally                 = "tally"
	dirDirectTrust           = "direct-trust"
	dirVerificationCardSets  = "verification_card_sets"
	dirBallotBoxes           = "ballot_boxes"
	fileEncryptionParameters = "encryptionParametersPayload.json"
	fileElectionEventContext = "electionEventContextPayload.json"
	fileSetupPublicKeys      = "setupComponentPublicKeysPayload.json"
	fileConfiguration        = "configuration-anonymized.xml"
	fileTallyData            = "setupComponentTallyDataPayload.json"
	fileTallyShuffle         = "tallyComponentShufflePayload.json"
	fileTallyVotes           = "tallyComponentVotesPayload.json"
	fileDecryptResults       = "evoting-decrypt.xml"

	prefixControlPublicKeys = "controlComponentPublicKeysPayload."
	prefixVerificationData  = "setupComponentVerificationDataPayload."
	prefixCodeShares        = "controlComponentCodeSharesPayload."
	prefixControlBallotBox  = "controlComponentBallotBoxPayload_"
	prefixControlShuffle    = "controlComponentShufflePayload_"
	suffixJSON              = ".json"
)

// Open loads the dataset and the keystore (if present) under dir and
// freezes them into a Context.
func Open(dir string, opts ...ContextOption) (*Context, error) {
	ds, err := Load(dir)
	if err != nil {
		return nil, err
	}
	ksDir := filepath.Join(dir, dirDirectTrust)
	if isDir(ksDir) {
		ks, err := signing.LoadKeystore(ksDir)
		if err != nil {
			return nil, err
		}
		opts = append([]ContextOption{WithKeystore(ks)}, opts...)
	}
	return NewContext(ds, opts...)
}

// Load reads every artifact found under dir. Missing files are left nil,
// files that do not decode are an error.
func Load(dir string) (*Dataset, error) {
	if !isDir(dir) {
		return nil, fmt.Errorf("dataset directory %s does not exist", dir)
	}
	ds := &Dataset{}
	var err error
	if setup := filepath.Join(dir, dirSetup); isDir(setup) {
		if ds.Setup, err = loadSetup(setup); err != nil {
			return nil, err
		}
	}
	if tally := filepath.Join(dir, dirTally); isDir(tally) {
		if ds.Tally, err = loadTally(tally); err != nil {
			return nil, err
		}
	}
	log.Debug().
		Str("dir", dir).
		Bool("setup", ds.Setup != nil).
		Bool("tally", ds.Tally != nil).
		Msg("dataset loaded")
	return ds, nil
}

func loadSetup(dir string) (*SetupArtifacts, error) {
	s := &SetupArtifacts{
		ControlComponentPublicKeys: map[int]*ControlComponentPublicKeysPayload{},
		VerificationCardSets:       map[string]*VerificationCardSetArtifacts{},
	}
	if err := readOptionalJSON(filepath.Join(dir, fileEncryptionParameters), &s.EncryptionParameters); err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, fileElectionEventContext), &s.ElectionEventContext); err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, fileSetupPublicKeys), &s.SetupComponentPublicKeys); err != nil {
		return nil, err
	}
	if err := readOptionalXML(filepath.Join(dir, fileConfiguration), &s.Configuration); err != nil {
		return nil, err
	}
	err := forIndexed(dir, prefixControlPublicKeys, func(node int, path string) error {
		p := new(ControlComponentPublicKeysPayload)
		s.ControlComponentPublicKeys[node] = p
		return readJSON(path, p)
	})
	if err != nil {
		return nil, err
	}
	vcsDir := filepath.Join(dir, dirVerificationCardSets)
	ids, err := subdirs(vcsDir)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		vcs, err := loadVerificationCardSet(filepath.Join(vcsDir, id))
		if err != nil {
			return nil, err
		}
		s.VerificationCardSets[id] = vcs
	}
	return s, nil
}

func loadVerificationCardSet(dir string) (*VerificationCardSetArtifacts, error) {
	vcs := &VerificationCardSetArtifacts{
		VerificationData: map[int]*SetupComponentVerificationDataPayload{},
		CodeShares:       map[int][]*ControlComponentCodeSharesPayload{},
	}
	if err := readOptionalJSON(filepath.Join(dir, fileTallyData), &vcs.TallyData); err != nil {
		return nil, err
	}
	err := forIndexed(dir, prefixVerificationData, func(chunk int, path string) error {
		p := new(SetupComponentVerificationDataPayload)
		vcs.VerificationData[chunk] = p
		return readJSON(path, p)
	})
	if err != nil {
		return nil, err
	}
	err = forIndexed(dir, prefixCodeShares, func(chunk int, path string) error {
		var p []*ControlComponentCodeSharesPayload
		if err := readJSON(path, &p); err != nil {
			return err
		}
		vcs.CodeShares[chunk] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vcs, nil
}

func loadTally(dir string) (*TallyArtifacts, error) {
	t := &TallyArtifacts{BallotBoxes: map[string]*BallotBoxArtifacts{}}
	if err := readOptionalXML(filepath.Join(dir, fileDecryptResults), &t.DecryptResults); err != nil {
		return nil, err
	}
	bbDir := filepath.Join(dir, dirBallotBoxes)
	ids, err := subdirs(bbDir)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		bb, err := loadBallotBox(filepath.Join(bbDir, id))
		if err != nil {
			return nil, err
		}
		t.BallotBoxes[id] = bb
	}
	return t, nil
}

func loadBallotBox(dir string) (*BallotBoxArtifacts, error) {
	bb := &BallotBoxArtifacts{
		ControlComponentBallotBoxes: map[int]*ControlComponentBallotBoxPayload{},
		ControlComponentShuffles:    map[int]*ControlComponentShufflePayload{},
	}
	err := forIndexed(dir, prefixControlBallotBox, func(node int, path string) error {
		p := new(ControlComponentBallotBoxPayload)
		bb.ControlComponentBallotBoxes[node] = p
		return readJSON(path, p)
	})
	if err != nil {
		return nil, err
	}
	err = forIndexed(dir, prefixControlShuffle, func(node int, path string) error {
		p := new(ControlComponentShufflePayload)
		bb.ControlComponentShuffles[node] = p
		return readJSON(path, p)
	})
	if err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, fileTallyShuffle), &bb.TallyComponentShuffle); err != nil {
		return nil, err
	}
	if err := readOptionalJSON(filepath.Join(dir, fileTallyVotes), &bb.TallyComponentVotes); err != nil {
		return nil, err
	}
	return bb, nil
}

// Write lays the dataset out under dir, the inverse of Load
func (ds *Dataset) Write(dir string) error {
	if s := ds.Setup; s != nil {
		sd := filepath.Join(dir, dirSetup)
		files := map[string]interface{}{}
		if s.EncryptionParameters != nil {
			files[fileEncryptionParameters] = s.EncryptionParameters
		}
		if s.ElectionEventContext != nil {
			files[fileElectionEventContext] = s.ElectionEventContext
		}
		if s.SetupComponentPublicKeys != nil {
			files[fileSetupPublicKeys] = s.SetupComponentPublicKeys
		}
		for node, p := range s.ControlComponentPublicKeys {
			files[prefixControlPublicKeys+strconv.Itoa(node)+suffixJSON] = p
		}
		for id, vcs := range s.VerificationCardSets {
			vd := filepath.Join(dirVerificationCardSets, id)
			if vcs.TallyData != nil {
				files[filepath.Join(vd, fileTallyData)] = vcs.TallyData
			}
			for chunk, p := range vcs.VerificationData {
				files[filepath.Join(vd, prefixVerificationData+strconv.Itoa(chunk)+suffixJSON)] = p
			}
			for chunk, p := range vcs.CodeShares {
				files[filepath.Join(vd, prefixCodeShares+strconv.Itoa(chunk)+suffixJSON)] = p
			}
		}
		if err := writeJSONFiles(sd, files); err != nil {
			return err
		}
		if s.Configuration != nil {
			if err := writeXML(filepath.Join(sd, fileConfiguration), s.Configuration); err != nil {
				return err
			}
		}
	}
	if t := ds.Tally; t != nil {
		td := filepath.Join(dir, dirTally)
		files := map[string]interface{}{}
		for id, bb := range t.BallotBoxes {
			bd := filepath.Join(dirBallotBoxes, id)
			for node, p := range bb.ControlComponentBallotBoxes {
				files[filepath.Join(bd, prefixControlBallotBox+strconv.Itoa(node)+suffixJSON)] = p
			}
			for node, p := range bb.ControlComponentShuffles {
				files[filepath.Join(bd, prefixControlShuffle+strconv.Itoa(node)+suffixJSON)] = p
			}
			if bb.TallyComponentShuffle != nil {
				files[filepath.Join(bd, fileTallyShuffle)] = bb.TallyComponentShuffle
			}
			if bb.TallyComponentVotes != nil {
				files[filepath.Join(bd, fileTallyVotes)] = bb.TallyComponentVotes
			}
		}
		if err := writeJSONFiles(td, files); err != nil {
			return err
		}
		if t.DecryptResults != nil {
			if err := writeXML(filepath.Join(td, fileDecryptResults), t.DecryptResults); err != nil {
				return err
			}
		}
	}
	return nil
}

// KeystoreDir is where Open looks for the direct-trust keysets
func KeystoreDir(dir string) string {
	return filepath.Join(dir, dirDirectTrust)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// forIndexed calls fn for every <prefix><int>.json file in dir
func forIndexed(dir, prefix string, fn func(idx int, path string) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffixJSON) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffixJSON))
		if err != nil {
			return fmt.Errorf("unexpected file name %s: %w", filepath.Join(dir, name), err)
		}
		if err := fn(idx, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// readOptionalJSON leaves *v nil when the file does not exist
func readOptionalJSON[T any](path string, v **T) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	*v = out
	return nil
}

func readOptionalXML[T any](path string, v **T) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	out := new(T)
	if err := xml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	*v = out
	return nil
}

func writeJSONFiles(dir string, files map[string]interface{}) error {
	for name, v := range files {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s: %w", name, err)
		}
		if err := writeFile(filepath.Join(dir, name), b); err != nil {
			return err
		}
	}
	return nil
}

func writeXML(path string, v interface{}) error {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, append([]byte(xml.Header), b...))
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
