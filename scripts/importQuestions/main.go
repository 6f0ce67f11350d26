// Command importQuestions loads quiz questions from a CSV file.
//
// The header row must name the columns question, correct and option_1 up to
// option_N. An optional order column sets the question order; correct is the
// 1-based number of the right option.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"lms/config"
	"lms/database"
	"lms/logger"
	"lms/models"
	courseService "lms/services/course"
)

func main() {
	quizID := flag.Uint("quiz", 0, "quiz to add the questions to")
	file := flag.String("file", "questions.csv", "CSV file to import")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	log, err := logger.New(config.AppConfig)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	database.ConnectDb()

	if *quizID == 0 {
		log.Fatal("-quiz is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open CSV file", zap.String("file", *file), zap.Error(err))
	}
	defer f.Close()

	questions, skipped, err := parseQuestions(f, uint(*quizID))
	if err != nil {
		log.Fatal("Failed to read CSV", zap.Error(err))
	}

	svc := courseService.New(database.Database.Db, nil, nil, log, 0)
	inserted, failed := importQuestions(context.Background(), svc, questions, log)

	log.Info("Import complete",
		zap.Int("inserted", inserted),
		zap.Int("failed", failed),
		zap.Int("skipped", len(skipped)),
	)
	for _, s := range skipped {
		log.Warn("Skipped row", zap.String("reason", s))
	}
}

// importQuestions adds each question in its own transaction so one bad row
// does not discard the rest.
func importQuestions(ctx context.Context, svc *courseService.Service, questions []courseService.AddQuestionInput, log *zap.Logger) (int, int) {
	auth := models.AuthContext{Role: models.RoleAdmin}
	inserted, failed := 0, 0
	for i, q := range questions {
		if _, err := svc.AddQuestion(ctx, auth, q); err != nil {
			log.Error("Error inserting question", zap.Int("index", i), zap.String("question", q.QuestionText), zap.Error(err))
			failed++
			continue
		}
		inserted++
	}
	return inserted, failed
}

// parseQuestions reads r into question inputs. Rows that cannot form a
// question are reported in skipped instead of failing the import.
func parseQuestions(r io.Reader, quizID uint) ([]courseService.AddQuestionInput, []string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read csv")
	}
	if len(records) < 2 {
		return nil, nil, errors.New("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	var optionCols []string
	for i, h := range records[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		headerIndex[name] = i
		if strings.HasPrefix(name, "option_") {
			optionCols = append(optionCols, name)
		}
	}
	for _, col := range []string{"question", "correct"} {
		if _, ok := headerIndex[col]; !ok {
			return nil, nil, errors.Errorf("missing %q column", col)
		}
	}

	var (
		questions []courseService.AddQuestionInput
		skipped   []string
	)
	for i, row := range records[1:] {
		line := i + 2
		text := getField(row, headerIndex, "question")
		if text == "" {
			skipped = append(skipped, "line "+strconv.Itoa(line)+": empty question")
			continue
		}
		correct, err := strconv.Atoi(getField(row, headerIndex, "correct"))
		if err != nil {
			skipped = append(skipped, "line "+strconv.Itoa(line)+": correct is not a number")
			continue
		}

		var options []courseService.OptionInput
		for n := 1; n <= len(optionCols); n++ {
			opt := getField(row, headerIndex, "option_"+strconv.Itoa(n))
			if opt == "" {
				break
			}
			options = append(options, courseService.OptionInput{OptionText: opt, IsCorrect: n == correct})
		}
		if len(options) < 2 || correct < 1 || correct > len(options) {
			skipped = append(skipped, "line "+strconv.Itoa(line)+": needs two options and a correct option among them")
			continue
		}

		order, _ := strconv.Atoi(getField(row, headerIndex, "order"))
		questions = append(questions, courseService.AddQuestionInput{
			QuizID:        quizID,
			QuestionText:  text,
			QuestionOrder: order,
			Options:       options,
		})
	}
	return questions, skipped, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
