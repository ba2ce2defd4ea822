package commands

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"infinite-experiment/bouncer/internal/constants"

	"github.com/bwmarrin/discordgo"
)

var dobPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateOfBirth computes the age for a YYYY-MM-DD date. Interviewers use it to
// check an ID without doing arithmetic in their head.
type DateOfBirth struct {
	Now func() time.Time
}

func (DateOfBirth) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "dob",
		Description:              "Calculate age from a date of birth.",
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "date",
				Description: "Date in `YYYY-MM-DD` format.",
				Required:    true,
			},
		},
	}
}

func (c DateOfBirth) Execute(ctx context.Context, inv *Invocation) (Reply, error) {
	input := inv.Strings["date"]
	if !dobPattern.MatchString(input) {
		return ephemeral(constants.MsgDOBFormat), nil
	}

	year, _ := strconv.Atoi(input[0:4])
	month, _ := strconv.Atoi(input[5:7])
	day, _ := strconv.Atoi(input[8:10])

	if month < 1 || month > 12 {
		return ephemeral(constants.MsgDOBMonth), nil
	}
	if limit := daysInMonth(year, month); day < 1 || day > limit {
		return ephemeral(constants.MsgDOBDay, month, limit), nil
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	today := now().UTC()

	born := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if born.After(today) {
		return ephemeral(constants.MsgDOBFuture), nil
	}

	stamp := fmt.Sprintf("<t:%d:D>", born.Unix())
	return ephemeral(constants.MsgDOBResult, stamp, age(born, today)), nil
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func daysInMonth(year, month int) int {
	switch month {
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// age counts completed years. A Feb 29 birthday completes a year on Mar 1 in
// common years.
func age(born, today time.Time) int {
	years := today.Year() - born.Year()
	if today.Month() < born.Month() || (today.Month() == born.Month() && today.Day() < born.Day()) {
		years--
	}
	return years
}
