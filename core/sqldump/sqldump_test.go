package sqldump

import (
	"errors"
	"strings"
	"testing"
)

const pageDump = "-- MySQL dump 10.19\n" +
	"/*!40101 SET NAMES utf8mb4 */;\n" +
	"CREATE TABLE `page` (\n  `page_id` int(8) unsigned NOT NULL AUTO_INCREMENT,\n) ENGINE=InnoDB;\n" +
	"INSERT INTO `page` VALUES (10,0,'AccessibleComputing',1,0,0.33167112649574004,'20240101000000','20240101000000',1219062925,111,'wikitext',NULL),(12,0,'Anarchism',0,0,0.786172332974311,'20240101000000','20240101000000',1225887357,110364,'wikitext',NULL);\n" +
	"INSERT INTO `page` VALUES (13,4,'Bank_(Begriffsklärung)',0,0,0.5,'x','y',1,2,'wikitext',NULL);\n" +
	"INSERT INTO `other` VALUES (1,2,3);\n" +
	"UNLOCK TABLES;\n"

func TestParseInsert(t *testing.T) {
	ins, err := ParseInsert("INSERT INTO `t` VALUES (1,'it\\'s',NULL,-2.5e3),(),('a\\\\b\\nc');")
	if err != nil {
		t.Fatal(err)
	}
	if ins.Table != "t" || len(ins.Rows) != 3 {
		t.Fatalf("got table %q with %d rows", ins.Table, len(ins.Rows))
	}

	row := ins.Rows[0]
	if n, _ := row[0].Int(); n != 1 {
		t.Errorf("row[0] = %d, want 1", n)
	}
	if row[1].String() != "it's" {
		t.Errorf("row[1] = %q, want it's", row[1].String())
	}
	if !row[2].Null {
		t.Error("row[2] should be NULL")
	}
	if _, err := row[2].Int(); err == nil {
		t.Error("NULL.Int() should fail")
	}
	if row[3].Raw != "-2.5e3" {
		t.Errorf("row[3] = %q", row[3].Raw)
	}
	if len(ins.Rows[1]) != 0 {
		t.Errorf("empty tuple has %d values", len(ins.Rows[1]))
	}
	if got := ins.Rows[2][0].String(); got != "a\\b\nc" {
		t.Errorf("escaped string = %q", got)
	}
}

func TestParseInsert_Invalid(t *testing.T) {
	for _, stmt := range []string{
		"INSERT INTO `t` VALUES (1,2",
		"INSERT INTO t VALUES (1)",
		"DELETE FROM `t`",
	} {
		if _, err := ParseInsert(stmt); err == nil {
			t.Errorf("ParseInsert(%q) should fail", stmt)
		}
	}
}

func TestPageRows(t *testing.T) {
	var pages []Page
	err := PageRows(strings.NewReader(pageDump), func(p Page) error {
		pages = append(pages, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []Page{
		{ID: 10, Namespace: 0, Title: "AccessibleComputing", Redirect: true},
		{ID: 12, Namespace: 0, Title: "Anarchism"},
		{ID: 13, Namespace: 4, Title: "Bank (Begriffsklärung)"},
	}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d = %+v, want %+v", i, pages[i], want[i])
		}
	}
}

func TestCategoryLinkRows(t *testing.T) {
	dump := "INSERT INTO `categorylinks` VALUES (12,'Political_ideologies','ANARCHISM','2024-01-01 00:00:00','','uppercase','page'),(12,'Anarchism','\\nANARCHISM','2024-01-01 00:00:00','','uppercase','page');"

	var links []CategoryLink
	err := CategoryLinkRows(strings.NewReader(dump), func(l CategoryLink) error {
		links = append(links, l)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 || links[0].Category != "Political ideologies" || links[1].From != 12 {
		t.Errorf("links = %+v", links)
	}
}

func TestScan_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := Scan(strings.NewReader(pageDump), "page", func(Row) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Scan() = %v after %d calls", err, calls)
	}
}

func TestScan_ReportsLine(t *testing.T) {
	dump := "-- header\nINSERT INTO `page` VALUES (1,0,'broken\n"
	err := Scan(strings.NewReader(dump), "page", func(Row) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Scan() error = %v, want line 2", err)
	}
}
