package dgeutils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dsnet/compress/bzip2"
	gzip "github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
)

/*BUFFERSIZE max line size accepted by the scanners */
const BUFFERSIZE = 1000000

/*Filename type used to check if files exists */
type Filename string

/*Set ... */
func (i *Filename) Set(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return &IOError{Op: "stat", Path: filename, Err: err}
	}

	*i = Filename(filename)
	return nil
}

func (i *Filename) String() string {
	return string(*i)
}

/*ArrayFlags ... */
type ArrayFlags []string

/*String ... */
func (i *ArrayFlags) String() string {
	return strings.Join(*i, "\t")
}

/*Set ... */
func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

/*Check ... */
func Check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

/*CloseFile close file, logging the error if any */
func CloseFile(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("error when closing file: %v", err)
	}
}

// stackedCloser closes a decompression/compression layer then the file under it.
type stackedCloser struct {
	layer io.Closer
	file  *os.File
}

func (s stackedCloser) Close() error {
	err := s.layer.Close()

	if errFile := s.file.Close(); err == nil {
		err = errFile
	}

	return err
}

type readCloser struct {
	io.Reader
	io.Closer
}

type writeCloser struct {
	io.Writer
	io.Closer
}

/*OpenReader open fname, decompressing .gz and .bz2 files */
func OpenReader(fname string) (io.ReadCloser, error) {
	fileOpen, err := os.Open(fname)

	if err != nil {
		return nil, &IOError{Op: "open", Path: fname, Err: err}
	}

	switch path.Ext(fname) {
	case ".gz":
		readerGzip, err := gzip.NewReader(bufio.NewReader(fileOpen))
		if err != nil {
			fileOpen.Close()
			return nil, &IOError{Op: "decompress", Path: fname, Err: err}
		}

		return readCloser{readerGzip, stackedCloser{readerGzip, fileOpen}}, nil

	case ".bz2":
		readerBzip, err := bzip2.NewReader(bufio.NewReader(fileOpen), new(bzip2.ReaderConfig))
		if err != nil {
			fileOpen.Close()
			return nil, &IOError{Op: "decompress", Path: fname, Err: err}
		}

		return readCloser{readerBzip, stackedCloser{readerBzip, fileOpen}}, nil
	}

	return fileOpen, nil
}

/*ReturnReader return a line scanner for fname and the closer releasing it */
func ReturnReader(fname string) (*bufio.Scanner, io.Closer, error) {
	reader, err := OpenReader(fname)

	if err != nil {
		return nil, nil, err
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), BUFFERSIZE)

	return scanner, reader, nil
}

/*ReturnWriter ... */
func ReturnWriter(fname string) (io.WriteCloser, error) {
	outputFile, err := os.Create(fname)

	if err != nil {
		return nil, &IOError{Op: "create", Path: fname, Err: err}
	}

	writer, err := wrapCompression(fname, outputFile)

	if err != nil {
		outputFile.Close()
		return nil, err
	}

	return writer, nil
}

/*wrapCompression stack the compression layer matching fname extension on top of file */
func wrapCompression(fname string, file *os.File) (io.WriteCloser, error) {
	switch path.Ext(fname) {
	case ".gz":
		writerGzip := gzip.NewWriter(file)
		return writeCloser{writerGzip, stackedCloser{writerGzip, file}}, nil

	case ".bz2":
		writerBzip, err := bzip2.NewWriter(file, new(bzip2.WriterConfig))
		if err != nil {
			return nil, &IOError{Op: "compress", Path: fname, Err: err}
		}

		return writeCloser{writerBzip, stackedCloser{writerBzip, file}}, nil
	}

	return file, nil
}

/*SplitFields split line with sep. An empty sep splits on any whitespace run */
func SplitFields(line, sep string) []string {
	if sep == "" {
		return strings.Fields(line)
	}

	split := strings.Split(line, sep)

	for i := range split {
		split[i] = strings.TrimSpace(split[i])
	}

	return split
}

/*ParseDelimiter turn a command-line delimiter such as `\t` into the real character */
func ParseDelimiter(sep string) string {
	switch sep {
	case `\t`, "tab":
		return "\t"
	case `\s`, "space":
		return " "
	case "whitespace":
		return ""
	}

	return sep
}

/*LoadIndexFile load a one-identifier-per-line file. When a line holds several
whitespace separated fields, the first one is used. Position i in the returned
slice is the line i+1 of the file */
func LoadIndexFile(fname string) ([]string, error) {
	scanner, closer, err := ReturnReader(fname)

	if err != nil {
		return nil, err
	}

	defer CloseFile(closer)

	var ids []string
	var lineNb int

	for scanner.Scan() {
		lineNb++
		split := strings.Fields(scanner.Text())

		if len(split) == 0 {
			return nil, &FormatError{File: fname, Line: lineNb,
				Reason: "empty line in index file"}
		}

		ids = append(ids, split[0])
	}

	if err = scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Path: fname, Err: err}
	}

	return ids, nil
}

/*CountNbLines count nb lines in a file*/
func CountNbLines(filename string) (int, error) {
	reader, file, err := ReturnReader(filename)

	if err != nil {
		return 0, err
	}

	defer CloseFile(file)

	nbLines := 0
	tStart := time.Now()

	for reader.Scan() {
		nbLines++
	}

	if err = reader.Err(); err != nil {
		return 0, &IOError{Op: "read", Path: filename, Err: err}
	}

	log.Debugf("Count nb lines done in time: %f s", time.Since(tStart).Seconds())

	return nbLines, nil
}

/*TimeIt log the elapsed time of a step in the usual "done in time" form */
func TimeIt(logger log.FieldLogger, step string, tStart time.Time) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	logger.Infof("%s done in time: %f s", step, time.Since(tStart).Seconds())
}

/*FileExists ... */
func FileExists(fname string) bool {
	info, err := os.Stat(fname)
	return err == nil && !info.IsDir()
}

/*Describe short human readable description of a file, used in logs */
func Describe(fname string) string {
	info, err := os.Stat(fname)

	if err != nil {
		return fmt.Sprintf("%s (missing)", fname)
	}

	return fmt.Sprintf("%s (%d bytes)", fname, info.Size())
}
