// Package datasets provides loaders for text classification corpora. The
// primary loader fetches the 20 Newsgroups corpus, caches it locally, and
// returns a deterministic, seed-shuffled split.
package datasets

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/scigolabs/nbtext/pkg/errors"
	"github.com/scigolabs/nbtext/pkg/log"
	"github.com/scigolabs/nbtext/preprocessing"
	"github.com/scigolabs/nbtext/sparse"
)

// Subset selects which split of the corpus to load.
type Subset string

const (
	// SubsetTrain loads the by-date training split.
	SubsetTrain Subset = "train"
	// SubsetTest loads the by-date test split.
	SubsetTest Subset = "test"
	// SubsetAll loads both splits, training documents first.
	SubsetAll Subset = "all"
)

const (
	newsgroupsName    = "20newsgroups"
	newsgroupsURL     = "http://qwone.com/~jason/20Newsgroups/20news-bydate.tar.gz"
	newsgroupsArchive = "20news-bydate.tar.gz"
	trainDir          = "20news-bydate-train"
	testDir           = "20news-bydate-test"
)

// Newsgroups holds a loaded corpus: one raw document per row of Data, the
// class index of each document in Target, and the class names indexed by
// those values.
type Newsgroups struct {
	Data        []string
	Target      []int
	TargetNames []string
}

type fetchConfig struct {
	subset      Subset
	shuffle     bool
	randomState int64
	dataHome    string
	download    bool
}

// FetchOption is a functional option for Fetch20Newsgroups.
type FetchOption func(*fetchConfig)

// WithSubset selects the split to load (default SubsetTrain).
func WithSubset(subset Subset) FetchOption {
	return func(c *fetchConfig) {
		c.subset = subset
	}
}

// WithShuffle controls whether documents are shuffled (default true).
func WithShuffle(shuffle bool) FetchOption {
	return func(c *fetchConfig) {
		c.shuffle = shuffle
	}
}

// WithRandomState sets the shuffle seed (default 42). The same seed always
// produces the same document order, which downstream incremental fitting
// relies on.
func WithRandomState(seed int64) FetchOption {
	return func(c *fetchConfig) {
		c.randomState = seed
	}
}

// WithDataHome overrides the cache directory (default
// os.UserCacheDir()/nbtext/datasets).
func WithDataHome(dir string) FetchOption {
	return func(c *fetchConfig) {
		c.dataHome = dir
	}
}

// WithDownload controls whether a missing corpus is downloaded
// (default true). Disable in environments without network access; fetching
// then fails fast when the cache is cold.
func WithDownload(download bool) FetchOption {
	return func(c *fetchConfig) {
		c.download = download
	}
}

// Fetch20Newsgroups loads the 20 Newsgroups corpus from the local cache,
// downloading and extracting it first when permitted. Fetch failures are
// fatal and propagated; no retry is attempted.
func Fetch20Newsgroups(opts ...FetchOption) (*Newsgroups, error) {
	cfg := fetchConfig{
		subset:      SubsetTrain,
		shuffle:     true,
		randomState: 42,
		download:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.dataHome == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, errors.NewFetchError(newsgroupsName, "user cache dir", err)
		}
		cfg.dataHome = filepath.Join(base, "nbtext", "datasets")
	}

	root := filepath.Join(cfg.dataHome, "20news-bydate")
	if _, err := os.Stat(filepath.Join(root, trainDir)); err != nil {
		if !cfg.download {
			return nil, errors.NewFetchError(newsgroupsName, root,
				errors.Wrap(err, "corpus not cached and downloading is disabled"))
		}
		if err := downloadAndExtract(cfg.dataHome, root); err != nil {
			return nil, err
		}
	}

	var dirs []string
	switch cfg.subset {
	case SubsetTrain:
		dirs = []string{filepath.Join(root, trainDir)}
	case SubsetTest:
		dirs = []string{filepath.Join(root, testDir)}
	case SubsetAll:
		dirs = []string{filepath.Join(root, trainDir), filepath.Join(root, testDir)}
	default:
		return nil, errors.NewValidationError("subset", "must be train, test or all", string(cfg.subset))
	}

	ng, err := readBydateDirs(dirs)
	if err != nil {
		return nil, err
	}

	if cfg.shuffle {
		shuffleCorpus(ng, cfg.randomState)
	}

	slog.Debug("corpus loaded",
		log.DatasetKey, newsgroupsName,
		log.SubsetKey, string(cfg.subset),
		log.SamplesKey, len(ng.Data),
		log.ClassesKey, len(ng.TargetNames),
	)
	return ng, nil
}

// readBydateDirs reads every category directory beneath the given split
// directories. Categories and files are walked in sorted order so the
// unshuffled document order is stable.
func readBydateDirs(dirs []string) (*Newsgroups, error) {
	ng := &Newsgroups{}
	classIdx := make(map[string]int)

	for _, dir := range dirs {
		cats, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.NewFetchError(newsgroupsName, dir, err)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i].Name() < cats[j].Name() })

		for _, cat := range cats {
			if !cat.IsDir() {
				continue
			}
			idx, ok := classIdx[cat.Name()]
			if !ok {
				idx = len(ng.TargetNames)
				classIdx[cat.Name()] = idx
				ng.TargetNames = append(ng.TargetNames, cat.Name())
			}

			catDir := filepath.Join(dir, cat.Name())
			files, err := os.ReadDir(catDir)
			if err != nil {
				return nil, errors.NewFetchError(newsgroupsName, catDir, err)
			}
			sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

			for _, f := range files {
				if f.IsDir() {
					continue
				}
				raw, err := os.ReadFile(filepath.Join(catDir, f.Name()))
				if err != nil {
					return nil, errors.NewFetchError(newsgroupsName, filepath.Join(catDir, f.Name()), err)
				}
				ng.Data = append(ng.Data, string(raw))
				ng.Target = append(ng.Target, idx)
			}
		}
	}

	if len(ng.Data) == 0 {
		return nil, errors.NewFetchError(newsgroupsName, dirs[0], errors.ErrEmptyData)
	}
	return ng, nil
}

// shuffleCorpus permutes documents and targets together with a seeded RNG.
func shuffleCorpus(ng *Newsgroups, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(ng.Data), func(i, j int) {
		ng.Data[i], ng.Data[j] = ng.Data[j], ng.Data[i]
		ng.Target[i], ng.Target[j] = ng.Target[j], ng.Target[i]
	})
}

// downloadAndExtract fetches the corpus archive into dataHome and unpacks it
// under extractRoot.
func downloadAndExtract(dataHome, extractRoot string) error {
	if err := os.MkdirAll(dataHome, 0o755); err != nil {
		return errors.NewFetchError(newsgroupsName, dataHome, err)
	}

	archivePath := filepath.Join(dataHome, newsgroupsArchive)
	if _, err := os.Stat(archivePath); err != nil {
		start := time.Now()
		slog.Info("downloading corpus",
			log.DatasetKey, newsgroupsName,
			log.URLKey, newsgroupsURL,
			log.CacheDirKey, dataHome,
		)
		if err := downloadFile(archivePath, newsgroupsURL); err != nil {
			return err
		}
		slog.Info("download complete",
			log.DatasetKey, newsgroupsName,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	return extractTarGz(archivePath, extractRoot)
}

func downloadFile(dst, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return errors.NewFetchError(newsgroupsName, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return errors.NewFetchError(newsgroupsName, url, errors.Newf("unexpected status %s", resp.Status))
	}

	tmp := dst + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.NewFetchError(newsgroupsName, tmp, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.NewFetchError(newsgroupsName, url, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewFetchError(newsgroupsName, tmp, err)
	}
	return os.Rename(tmp, dst)
}

func extractTarGz(archivePath, extractRoot string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.NewFetchError(newsgroupsName, archivePath, err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.NewFetchError(newsgroupsName, archivePath, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewFetchError(newsgroupsName, archivePath, err)
		}

		// Reject entries that would escape the extraction root.
		target := filepath.Join(extractRoot, filepath.Clean(hdr.Name))
		if rel, err := filepath.Rel(extractRoot, target); err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
			return errors.NewFetchError(newsgroupsName, archivePath, errors.Newf("unsafe archive path %q", hdr.Name))
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.NewFetchError(newsgroupsName, target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.NewFetchError(newsgroupsName, target, err)
			}
			out, err := os.Create(target)
			if err != nil {
				return errors.NewFetchError(newsgroupsName, target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return errors.NewFetchError(newsgroupsName, target, err)
			}
			if err := out.Close(); err != nil {
				return errors.NewFetchError(newsgroupsName, target, err)
			}
		}
	}
}

// LoadCorpus fetches the corpus and vectorizes it into a sparse term-count
// matrix with the default vocabulary policy, returning the matrix and the
// aligned label vector.
func LoadCorpus(opts ...FetchOption) (*sparse.CSR, []int, error) {
	ng, err := Fetch20Newsgroups(opts...)
	if err != nil {
		return nil, nil, err
	}

	cv := preprocessing.NewCountVectorizer()
	X, err := cv.FitTransform(ng.Data)
	if err != nil {
		return nil, nil, err
	}
	return X, ng.Target, nil
}
