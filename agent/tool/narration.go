package tool

import (
	"fmt"
	"strings"

	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

const (
	defaultChildName = "dear child"
	maxNarrated      = 4

	searchFailedText = "Oh dear! I'm having trouble reaching my workshop catalog right now. Let me check again... Can you tell me more about what kind of gift you're looking for?"
	searchFirstText  = "Oh my! I need to search for gifts first. What kind of gift would you like for Christmas?"
)

var niceListTemplates = []string{
	"Let me check my big magical book here at the North Pole... *pages rustling*... Oh yes! I found it! %s is definitely on the NICE LIST! You've been wonderful this year!",
	"Ho ho ho! %s! Let me see... *checking list twice*... YES! You're on my nice list! I can see all the kind things you've done this year!",
	"My special list says %s has been absolutely wonderful! The elves have been telling me such good things about you! Keep up the fantastic work!",
	"The elves are so excited! They just told me that %s is on the nice list! They've been watching and you've been so good!",
}

func giftsFoundText(items []statex.GiftItem) string {
	var b strings.Builder
	b.WriteString("Ho ho ho! I found some wonderful gifts that would be perfect! Let me tell you about each one:\n\n")
	for i, item := range items {
		if i == maxNarrated {
			break
		}
		fmt.Fprintf(&b, "Option %d: %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "   Price: %s\n", item.Price)
		if item.Rating != "" {
			fmt.Fprintf(&b, "   Rating: %s stars\n", item.Rating)
		}
		if item.Description != "" {
			fmt.Fprintf(&b, "   Description: %s...\n", prefixRunes(item.Description, 100))
		}
		b.WriteString("\n")
	}
	b.WriteString("I can see all these wonderful gifts on my magical display here at the North Pole! ")
	b.WriteString("Which one would you like? Just tell me the number - option 1, 2, 3, or 4!")
	return b.String()
}

func selectionRangeText(choice int64, n int) string {
	return fmt.Sprintf("Oh my! I don't see option %d. Please choose from options 1 to %d. Which one would you like?", choice, n)
}

func giftSelectedText(gift statex.GiftItem) string {
	var b strings.Builder
	b.WriteString("Ho ho ho! What a wonderful choice! You've selected:\n\n")
	fmt.Fprintf(&b, "**%s**\n", gift.Title)
	fmt.Fprintf(&b, "Price: %s\n", gift.Price)
	if gift.Rating != "" {
		fmt.Fprintf(&b, "Rating: %s stars - Other children love this!\n", gift.Rating)
	}
	if gift.Description != "" {
		fmt.Fprintf(&b, "\nThis gift is perfect because: %s\n", prefixRunes(gift.Description, 150))
	}
	b.WriteString("\nThe elves are already preparing this special gift for you! ")
	b.WriteString("I can see it appearing on my list right now. ")
	b.WriteString("\nWould you like to search for anything else from Santa's workshop?")
	return b.String()
}

func niceListText(template, name string) string {
	return fmt.Sprintf(template, name) +
		fmt.Sprintf("\n\n✨ %s - NICE LIST STATUS: CONFIRMED! ✨", name) +
		"\n\nYou're going to have a magical Christmas!"
}

func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
