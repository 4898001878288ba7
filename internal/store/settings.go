package store

type SettingsState struct {
	Rev           uint64
	Notifications NotificationSettings
}

func DefaultSettings() SettingsState {
	return SettingsState{
		Notifications: NotificationSettings{
			UserJoin:        true,
			UserLeave:       true,
			UserNameChanged: true,
		},
	}
}

func reduceSettings(s SettingsState, in Intent) SettingsState {
	if in.Kind != KindSetNotificationSettings {
		return s
	}
	p, ok := in.Payload.(NotificationSettings)
	if !ok || p == s.Notifications {
		return s
	}
	return SettingsState{Rev: s.Rev + 1, Notifications: p}
}

type ConfigState struct {
	Rev   uint64
	Emoji map[string]string
}

func reduceConfig(s ConfigState, in Intent) ConfigState {
	if in.Kind != KindSetEmoji {
		return s
	}
	p, ok := in.Payload.(SetEmojiPayload)
	if !ok {
		return s
	}
	emoji := make(map[string]string, len(p.Emoji))
	for k, v := range p.Emoji {
		emoji[k] = v
	}
	return ConfigState{Rev: s.Rev + 1, Emoji: emoji}
}
